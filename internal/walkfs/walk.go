// Package walkfs implements the single shared repository walker every
// higher-level component (semantic tools, ranker, vector index, slicer)
// walks through, honoring ignore-file conventions and the absolute
// per-file size cap (spec §4.E, §5, §7).
package walkfs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxFileBytes is the absolute, non-configurable per-file size cap (spec §7
// "Absolute size cap exceeded — file is excluded silently from the walker").
const MaxFileBytes = 1 << 20

// defaultDenyDirs are heavy-directory basenames skipped regardless of
// .gitignore contents (build outputs, VCS dirs, caches, vendor dirs), plus
// the tool's own default output directory so a second run never walks into
// and re-ingests its prior output as ordinary source.
var defaultDenyDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	"node_modules": true, "vendor": true, "target": true,
	"dist": true, "build": true, ".cache": true,
	"__pycache__": true, ".venv": true, "venv": true,
	".next": true, ".nuxt": true, "coverage": true,
	".chiselmap": true,
}

// Options configures one Walk call.
type Options struct {
	// ExtraDenyDirNames supplements defaultDenyDirs (config key
	// scan.exclude_dir_names, plus the resolved output_dir basename for
	// callers that know it - see config.Config.WalkDenyDirs).
	ExtraDenyDirNames []string
	// IgnoreGitignore skips .gitignore honoring entirely (used by
	// repo_map's ignore_gitignore? argument).
	IgnoreGitignore bool
	// MaxDepth bounds recursion; 0 means unbounded.
	MaxDepth int
	// MaxFileBytes is the configurable soft cap (config key
	// token_estimator.max_file_bytes). 0 disables it; MaxFileBytes the
	// hard constant still applies regardless.
	MaxFileBytes int64
}

// Entry is one surviving regular file.
type Entry struct {
	AbsPath string
	RelPath string // forward-slash, repo-root relative
	Size    int64
	ModTime int64 // unix nanoseconds
}

// Diagnostics counts why files were dropped, surfaced by repo_map (spec §4.E).
type Diagnostics struct {
	Scanned        int
	Kept           int
	IgnoredOrError int
}

// Walk enumerates every eligible regular file under root, returning entries
// in deterministic (lexical, depth-first) order.
func Walk(root string, opts Options) ([]Entry, Diagnostics) {
	deny := make(map[string]bool, len(defaultDenyDirs)+len(opts.ExtraDenyDirNames))
	for k := range defaultDenyDirs {
		deny[k] = true
	}
	for _, d := range opts.ExtraDenyDirNames {
		deny[d] = true
	}

	gi := newGitignoreParser()
	if !opts.IgnoreGitignore {
		_ = gi.loadGitignore(root)
	}

	var diag Diagnostics
	var entries []Entry

	var walkDir func(dir string, rel string, depth int)
	walkDir = func(dir string, rel string, depth int) {
		if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			return
		}
		items, err := os.ReadDir(dir)
		if err != nil {
			diag.IgnoredOrError++
			return
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Name() < items[j].Name() })

		for _, it := range items {
			name := it.Name()
			childRel := name
			if rel != "" {
				childRel = rel + "/" + name
			}
			if it.IsDir() {
				if deny[name] {
					continue
				}
				if !opts.IgnoreGitignore && gi.shouldIgnore(childRel, true) {
					continue
				}
				walkDir(filepath.Join(dir, name), childRel, depth+1)
				continue
			}

			diag.Scanned++
			if !opts.IgnoreGitignore && gi.shouldIgnore(childRel, false) {
				diag.IgnoredOrError++
				continue
			}
			info, err := it.Info()
			if err != nil {
				diag.IgnoredOrError++
				continue
			}
			if info.Size() > MaxFileBytes {
				diag.IgnoredOrError++
				continue
			}
			if opts.MaxFileBytes > 0 && info.Size() > opts.MaxFileBytes {
				diag.IgnoredOrError++
				continue
			}
			entries = append(entries, Entry{
				AbsPath: filepath.Join(dir, name),
				RelPath: filepath.ToSlash(childRel),
				Size:    info.Size(),
				ModTime: info.ModTime().UnixNano(),
			})
			diag.Kept++
		}
	}

	walkDir(root, "", 0)
	return entries, diag
}

// ReadFile reads path, enforcing the same absolute size cap Walk applies, so
// callers that stat-then-read (vector index refresh) stay consistent with
// walker-discovered entries. maxBytes is the configurable soft cap
// (token_estimator.max_file_bytes); 0 leaves only the hard cap in effect,
// and a maxBytes tighter than the hard cap wins.
func ReadFile(path string, maxBytes int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	limit := int64(MaxFileBytes)
	if maxBytes > 0 && maxBytes < limit {
		limit = maxBytes
	}
	if info.Size() > limit {
		return nil, os.ErrInvalid
	}
	return os.ReadFile(path)
}

// SplitExt returns the lowercase extension including the leading dot, with
// the ".d.ts" double-extension special case.
func SplitExt(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".d.ts") {
		return ".d.ts"
	}
	return strings.ToLower(filepath.Ext(path))
}
