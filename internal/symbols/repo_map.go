package symbols

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/standardbeagle/chiselmap/internal/driver"
	"github.com/standardbeagle/chiselmap/internal/skeleton"
	"github.com/standardbeagle/chiselmap/internal/walkfs"
)

const defaultRepoMapBudget = 8000
const deepModeMaxFiles = 30
const filesOnlyMaxFiles = 150
const symbolFilterMaxCandidates = 300
const deepModeMaxSymbolsPerFile = 20

// RepoMapDiagnostics mirrors spec §4.E's "total scanned, kept, and the
// breakdown of drops" requirement.
type RepoMapDiagnostics struct {
	Scanned         int
	Kept            int
	IgnoredOrErrored int
	UnsupportedExt  int
	FilteredOut     int
}

// RepoMapOptions configures one RepoMap call.
type RepoMapOptions struct {
	SearchFilter    []string // case-insensitive OR-of-substrings
	CharBudget      int      // 0 means defaultRepoMapBudget
	IgnoreGitignore bool
}

// repoMapCandidate is one file surviving discovery/filtering, carrying its
// symbols once computed so render modes don't re-parse.
type repoMapCandidate struct {
	entry   walkfs.Entry
	driver  driver.Driver
	symbols []driver.Symbol
}

// RepoMap implements spec §4.E's repo_map tool: discover files, apply the
// optional filter, emit one of three hierarchical text modes depending on
// the surviving file count, enforcing a hard character budget.
func RepoMap(reg *driver.Registry, targetDir string, opts RepoMapOptions) (string, RepoMapDiagnostics, error) {
	budget := opts.CharBudget
	if budget <= 0 {
		budget = defaultRepoMapBudget
	}

	entries, walkDiag := walkfs.Walk(targetDir, walkfs.Options{IgnoreGitignore: opts.IgnoreGitignore})
	diag := RepoMapDiagnostics{Scanned: walkDiag.Scanned, IgnoredOrErrored: walkDiag.IgnoredOrError}

	var eligible []repoMapCandidate
	for _, e := range entries {
		d := reg.DriverFor(e.AbsPath)
		if d == nil {
			diag.UnsupportedExt++
			continue
		}
		eligible = append(eligible, repoMapCandidate{entry: e, driver: d})
	}

	filtered := eligible
	if len(opts.SearchFilter) > 0 {
		filtered = nil
		checkSymbols := len(eligible) <= symbolFilterMaxCandidates
		for _, c := range eligible {
			if matchesFilter(c.entry.RelPath, opts.SearchFilter) {
				filtered = append(filtered, c)
				continue
			}
			if !checkSymbols {
				diag.FilteredOut++
				continue
			}
			source, err := walkfs.ReadFile(c.entry.AbsPath, 0)
			if err != nil {
				diag.FilteredOut++
				continue
			}
			syms := skeleton.Symbols(reg, c.entry.AbsPath, source)
			matched := false
			for _, s := range syms {
				if matchesFilter(s.Name, opts.SearchFilter) {
					matched = true
					break
				}
			}
			if matched {
				c.symbols = syms
				filtered = append(filtered, c)
			} else {
				diag.FilteredOut++
			}
		}
	}
	diag.Kept = len(filtered)

	if diag.Kept == 0 {
		return "", diag, fmt.Errorf("repo_map: no eligible files under %s (try --ignore-gitignore, a broader filter, or a different target)", targetDir)
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].entry.RelPath < filtered[j].entry.RelPath })

	var b strings.Builder
	switch {
	case diag.Kept <= deepModeMaxFiles:
		renderDeepMode(&b, reg, filtered)
	case diag.Kept <= filesOnlyMaxFiles:
		renderFilesOnlyMode(&b, filtered)
	default:
		renderFoldersOnlyMode(&b, filtered)
	}

	return truncateUTF8Safe(b.String(), budget), diag, nil
}

func matchesFilter(text string, filters []string) bool {
	lower := strings.ToLower(text)
	for _, f := range filters {
		if strings.Contains(lower, strings.ToLower(f)) {
			return true
		}
	}
	return false
}

func renderDeepMode(b *strings.Builder, reg *driver.Registry, entries []repoMapCandidate) {
	for _, c := range entries {
		fmt.Fprintf(b, "%s\n", c.entry.RelPath)
		syms := c.symbols
		if syms == nil {
			source, err := walkfs.ReadFile(c.entry.AbsPath, 0)
			if err == nil {
				syms = skeleton.Symbols(reg, c.entry.AbsPath, source)
			}
		}
		shown := 0
		for _, s := range syms {
			if !s.Exported {
				continue
			}
			fmt.Fprintf(b, "  %s %s\n", s.Kind, s.Name)
			shown++
			if shown >= deepModeMaxSymbolsPerFile {
				break
			}
		}
	}
}

func renderFilesOnlyMode(b *strings.Builder, entries []repoMapCandidate) {
	for _, c := range entries {
		fmt.Fprintf(b, "%s\n", c.entry.RelPath)
	}
}

func renderFoldersOnlyMode(b *strings.Builder, entries []repoMapCandidate) {
	seen := make(map[string]bool)
	var dirs []string
	for _, c := range entries {
		dir := path.Dir(c.entry.RelPath)
		if dir == "." {
			continue
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	for _, d := range dirs {
		fmt.Fprintf(b, "%s/\n", d)
	}
}

// truncateUTF8Safe trims text to at most budget runes, never splitting a
// multi-byte rune, appending a marker if truncation occurred.
func truncateUTF8Safe(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	marker := "\n... (truncated)\n"
	cut := budget - len([]rune(marker))
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + marker
}
