// Package rank implements the file ranker (spec §4.F): an additive path-
// based score plus an import-graph in-degree boost, with a git-recency
// signal layered on top (supplemented feature, not in spec.md).
package rank

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/standardbeagle/chiselmap/internal/gitsignal"
	"github.com/standardbeagle/chiselmap/pkg/pathutil"
)

// Entry is one ranked file, alongside the score that produced its position.
type Entry struct {
	RelPath string
	Score   int
}

var testMarkers = []string{"/tests/", ".test.", "_test.", "test_"}

var entryPointNames = map[string]bool{
	"main.go": true, "main.py": true, "main.rs": true, "main.c": true,
	"main.cpp": true, "main.java": true, "lib.rs": true, "index.js": true,
	"index.ts": true, "index.tsx": true, "cli.go": true, "cli.py": true,
	"cli.js": true, "cli.ts": true, "__init__.py": true,
}

var handlerMarkers = []string{"service", "handler", "router", "controller"}

var manifestNames = map[string]bool{
	"package.json": true, "cargo.toml": true, "go.mod": true,
	"pyproject.toml": true, "pom.xml": true, "build.gradle": true,
	"composer.json": true, "gemfile": true,
}

var denyPathMarkers = []string{"/dist/", "/target/", "/generated/", "/migrations/"}

// baseImportance computes the additive path-based score of spec §4.F's
// table, operating on the lowercased repo-relative path.
func baseImportance(relPath string) int {
	lower := strings.ToLower(relPath)
	base := strings.ToLower(path.Base(relPath))
	score := 0

	for _, m := range testMarkers {
		if strings.Contains(lower, m) || strings.HasPrefix(base, "test_") {
			score -= 1000
			break
		}
	}
	if entryPointNames[base] {
		score += 120
	}
	for _, m := range handlerMarkers {
		if strings.Contains(base, m) {
			score += 90
			break
		}
	}
	score += 30 * strings.Count(lower, "/src/")
	if strings.Contains(lower, "/core/") || strings.Contains(lower, "/lib/") ||
		strings.Contains(lower, "/common/") || strings.Contains(lower, "/shared/") {
		score += 25
	}
	if manifestNames[base] {
		score += 60
	}
	if strings.HasSuffix(base, ".md") || strings.HasSuffix(base, ".markdown") {
		score += 10
	}
	if strings.HasSuffix(base, ".toml") || strings.HasSuffix(base, ".yaml") ||
		strings.HasSuffix(base, ".yml") || strings.HasSuffix(base, ".json") {
		score += 5
	}
	for _, m := range denyPathMarkers {
		if strings.Contains(lower, m) {
			score -= 30
			break
		}
	}
	depth := pathutil.Depth(lower) + 1
	if depth > 6 {
		score -= 5 * (depth - 6)
	}
	return score
}

// ImportGraph maps a repo-relative path to the set of repo-relative paths it
// imports; only in-degree (how many files import a given path) matters to
// the ranker (spec §9 "cyclic module graph... only in-degree counts").
type ImportGraph map[string][]string

// InDegree computes, for every path that appears as a target anywhere in g,
// how many distinct source files import it.
func InDegree(g ImportGraph) map[string]int {
	deg := make(map[string]int)
	for _, targets := range g {
		seen := make(map[string]bool, len(targets))
		for _, t := range targets {
			if seen[t] {
				continue
			}
			seen[t] = true
			deg[t]++
		}
	}
	return deg
}

// Options configures one Rank call.
type Options struct {
	Graph         ImportGraph
	GitRecency    gitsignal.RecencyScore // nil disables the recency boost
}

// Rank scores every path and returns entries sorted by descending score,
// tie-broken alphabetically by repo-relative path (spec §4.F, §5 ordering).
func Rank(paths []string, opts Options) []Entry {
	inDegree := InDegree(opts.Graph)

	out := make([]Entry, 0, len(paths))
	for _, p := range paths {
		score := baseImportance(p) + 10*inDegree[p]
		if opts.GitRecency != nil {
			score += opts.GitRecency[p]
		}
		out = append(out, Entry{RelPath: p, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].RelPath < out[j].RelPath
	})
	return out
}

// WithGitRecency is a convenience wrapper that collects the recency signal
// for root before ranking, degrading to Rank(paths, opts) with no recency
// boost if collection fails or ctx is nil.
func WithGitRecency(ctx context.Context, root string, paths []string, opts Options) []Entry {
	if ctx != nil {
		opts.GitRecency = gitsignal.Collect(ctx, root)
	}
	return Rank(paths, opts)
}
