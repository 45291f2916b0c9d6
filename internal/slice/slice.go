// Package slice implements the slicer/packer (spec §4.H): plain mode
// (walk → rank → greedy pack) and huge-workspace mode (per-member budget
// splitting), emitting the bit-exact XML document of spec §6.
package slice

import (
	"context"
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/standardbeagle/chiselmap/internal/config"
	"github.com/standardbeagle/chiselmap/internal/driver"
	"github.com/standardbeagle/chiselmap/internal/rank"
	"github.com/standardbeagle/chiselmap/internal/skeleton"
	"github.com/standardbeagle/chiselmap/internal/walkfs"
	"github.com/standardbeagle/chiselmap/internal/workspace"
	"github.com/standardbeagle/chiselmap/pkg/pathutil"
)

// PackedFile is one file emitted into the final slice.
type PackedFile struct {
	RelPath string
	Content string
}

// Result is the fully packed slice, ready for RenderXML.
type Result struct {
	RepoMap     string
	Files       []PackedFile
	TotalTokens int
	TotalChars  int
}

// Options configures one Slice call.
type Options struct {
	BudgetTokens    int
	ForceHuge       bool
	IgnoreGitignore bool
}

const (
	fileWrapperOverhead = 33
	mapWrapperOverhead  = 40
	documentPrelude     = 64
	repoMapMaxLines     = 4000
	repoMapMaxBytes     = 64 * 1024
)

// Slice implements spec §4.H end to end: resolves target, picks plain or
// huge-workspace mode, and returns the packed result.
func Slice(ctx context.Context, reg *driver.Registry, repoRoot, target string, cfg config.Config, opts Options) (Result, error) {
	budget := opts.BudgetTokens
	if budget <= 0 {
		budget = math.MaxInt32
	}

	info, err := os.Stat(target)
	if err == nil && !info.IsDir() {
		return focusFullFile(repoRoot, target)
	}

	members, _ := workspace.Discover(repoRoot, cfg.HugeCodebase.IncludeMembers, cfg.HugeCodebase.ExcludeMembers, cfg.HugeCodebase.MemberScanDepth)
	huge := opts.ForceHuge || (cfg.HugeCodebase.Enabled && len(members) >= 5)
	sameAsRoot := samePath(target, repoRoot)

	if huge && sameAsRoot && len(members) > 0 {
		return sliceHuge(ctx, reg, repoRoot, members, cfg, budget, opts)
	}
	return slicePlain(ctx, reg, repoRoot, target, cfg, budget, opts)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func focusFullFile(repoRoot, target string) (Result, error) {
	data, err := os.ReadFile(target)
	if err != nil {
		return Result{}, fmt.Errorf("slice: reading focus file: %w", err)
	}
	rel := pathutil.ToRelative(target, repoRoot)
	content := string(data)
	return Result{
		Files:       []PackedFile{{RelPath: rel, Content: content}},
		TotalChars:  len(content),
		TotalTokens: len(content) / 4,
	}, nil
}

func slicePlain(ctx context.Context, reg *driver.Registry, repoRoot, target string, cfg config.Config, budget int, opts Options) (Result, error) {
	entries, _ := walkfs.Walk(target, walkfs.Options{
		ExtraDenyDirNames: cfg.WalkDenyDirs(),
		IgnoreGitignore:   opts.IgnoreGitignore,
		MaxFileBytes:      cfg.TokenEstimator.MaxFileBytes,
	})
	if len(entries) == 0 {
		return Result{}, fmt.Errorf("slice: no files found under %s", target)
	}

	relPaths := make([]string, 0, len(entries))
	byRel := make(map[string]walkfs.Entry, len(entries))
	for _, e := range entries {
		rel := pathutil.ToRelative(e.AbsPath, repoRoot)
		relPaths = append(relPaths, rel)
		byRel[rel] = e
	}

	graph := rank.BuildImportGraph(reg, repoRoot, relPaths, func(rel string) ([]byte, error) {
		return walkfs.ReadFile(byRel[rel].AbsPath, cfg.TokenEstimator.MaxFileBytes)
	})
	recencyCtx := ctx
	if cfg.Rank.DisableGitRecency {
		recencyCtx = nil
	}
	ranked := rank.WithGitRecency(recencyCtx, repoRoot, relPaths, rank.Options{Graph: graph})

	repoMap := renderRepoMap(relPaths)
	files, tokens := greedyPack(reg, cfg, byRel, ranked, budget, repoMap)

	totalChars := len(repoMap)
	for _, f := range files {
		totalChars += len(f.Content)
	}

	return Result{RepoMap: repoMap, Files: files, TotalTokens: tokens, TotalChars: totalChars}, nil
}

func sliceHuge(ctx context.Context, reg *driver.Registry, repoRoot string, members []workspace.Member, cfg config.Config, totalBudget int, opts Options) (Result, error) {
	n := len(members)
	perMember := totalBudget / n
	if perMember < cfg.HugeCodebase.MinMemberBudget {
		perMember = cfg.HugeCodebase.MinMemberBudget
	}
	rootReserve := totalBudget / 10
	if rootReserve > 2000 {
		rootReserve = 2000
	}

	var sections []string
	var allFiles []PackedFile
	totalTokens := 0

	rootEntries, _ := walkfs.Walk(repoRoot, walkfs.Options{
		ExtraDenyDirNames: cfg.WalkDenyDirs(),
		IgnoreGitignore:   opts.IgnoreGitignore,
		MaxFileBytes:      cfg.TokenEstimator.MaxFileBytes,
	})
	var rootOnly []walkfs.Entry
	for _, e := range rootEntries {
		rel := pathutil.ToRelative(e.AbsPath, repoRoot)
		if pathutil.Depth(rel) == 0 {
			rootOnly = append(rootOnly, e)
		}
	}
	if len(rootOnly) > 0 {
		relPaths := make([]string, len(rootOnly))
		byRel := make(map[string]walkfs.Entry, len(rootOnly))
		for i, e := range rootOnly {
			rel := pathutil.ToRelative(e.AbsPath, repoRoot)
			relPaths[i] = rel
			byRel[rel] = e
		}
		ranked := rank.Rank(relPaths, rank.Options{})
		repoMap := renderRepoMap(relPaths)
		files, tokens := greedyPack(reg, cfg, byRel, ranked, rootReserve, "")
		sections = append(sections, "# root\n"+repoMap)
		allFiles = append(allFiles, files...)
		totalTokens += tokens
	}

	for _, m := range members {
		memberRoot := filepath.Join(repoRoot, filepath.FromSlash(m.RelPath))
		sub, err := slicePlain(ctx, reg, repoRoot, memberRoot, cfg, perMember, opts)
		if err != nil {
			continue
		}
		sections = append(sections, fmt.Sprintf("# %s\n%s", m.RelPath, sub.RepoMap))
		allFiles = append(allFiles, sub.Files...)
		totalTokens += sub.TotalTokens
	}

	repoMap := strings.Join(sections, "\n\n")
	totalChars := len(repoMap)
	for _, f := range allFiles {
		totalChars += len(f.Content)
	}
	return Result{RepoMap: repoMap, Files: allFiles, TotalTokens: totalTokens, TotalChars: totalChars}, nil
}

func renderRepoMap(relPaths []string) string {
	sorted := append([]string(nil), relPaths...)
	sort.Strings(sorted)
	if len(sorted) > repoMapMaxLines {
		sorted = sorted[:repoMapMaxLines]
	}
	joined := strings.Join(sorted, "\n")
	if len(joined) > repoMapMaxBytes {
		joined = joined[:repoMapMaxBytes]
	}
	return joined
}

// greedyPack implements spec §4.H's greedy pack: iterate ranked entries,
// estimate bytes/tokens, skip (but continue) any entry that would push the
// running total over budget.
func greedyPack(reg *driver.Registry, cfg config.Config, byRel map[string]walkfs.Entry, ranked []rank.Entry, budget int, repoMap string) ([]PackedFile, int) {
	charsPerToken := cfg.TokenEstimator.CharsPerToken
	if charsPerToken <= 0 {
		charsPerToken = 4
	}

	runningTokens := int(math.Ceil(float64(documentPrelude) / float64(charsPerToken)))
	if repoMap != "" {
		runningTokens += int(math.Ceil(float64(mapWrapperOverhead+len(repoMap)) / float64(charsPerToken)))
	}

	var files []PackedFile
	for _, entry := range ranked {
		e, ok := byRel[entry.RelPath]
		if !ok {
			continue
		}
		source, err := walkfs.ReadFile(e.AbsPath, cfg.TokenEstimator.MaxFileBytes)
		if err != nil {
			continue
		}

		content := compact(reg, cfg, entry.RelPath, source)
		wrapperBytes := fileWrapperOverhead + len(entry.RelPath)
		estTokens := int(math.Ceil(float64(len(content)+wrapperBytes) / float64(charsPerToken)))

		if runningTokens+estTokens > budget {
			continue
		}
		runningTokens += estTokens
		files = append(files, PackedFile{RelPath: entry.RelPath, Content: content})
	}
	return files, runningTokens
}

// compact applies spec §4.H's per-file compaction rules: manifest subset
// compaction, skeletonization, or truncation, in that priority order.
func compact(reg *driver.Registry, cfg config.Config, relPath string, source []byte) string {
	if isCargoManifest(relPath) {
		return compactCargoManifest(source)
	}
	if isNpmManifest(relPath) {
		return compactNpmManifest(source)
	}
	if !cfg.SkeletonMode {
		return string(source)
	}

	res := skeleton.Skeletonize(reg, relPath, source)
	if res.Status == skeleton.StatusOK {
		return res.Text
	}
	if looksLikeCode(relPath) {
		return truncateUnsupported(relPath, source)
	}
	return string(source)
}

var codeLikeExts = map[string]bool{
	".sh": true, ".bash": true, ".ps1": true, ".lua": true, ".swift": true,
	".kt": true, ".scala": true, ".ex": true, ".exs": true, ".zig": true,
	".dart": true, ".r": true, ".pl": true,
}

func looksLikeCode(relPath string) bool {
	return codeLikeExts[strings.ToLower(path.Ext(relPath))]
}
