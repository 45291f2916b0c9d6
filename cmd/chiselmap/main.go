package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/chiselmap/internal/config"
	"github.com/standardbeagle/chiselmap/internal/driver"
	cerrors "github.com/standardbeagle/chiselmap/internal/errors"
	"github.com/standardbeagle/chiselmap/internal/rank"
	"github.com/standardbeagle/chiselmap/internal/rpc"
	"github.com/standardbeagle/chiselmap/internal/skeleton"
	"github.com/standardbeagle/chiselmap/internal/slice"
	"github.com/standardbeagle/chiselmap/internal/symbols"
	"github.com/standardbeagle/chiselmap/internal/vectorindex"
	"github.com/standardbeagle/chiselmap/internal/version"
	"github.com/standardbeagle/chiselmap/internal/walkfs"
	"github.com/standardbeagle/chiselmap/internal/workspace"
)

// logger reports unrecoverable failures on stderr (spec §6: exit nonzero
// only on unrecoverable I/O or parse error at the CLI boundary), keeping
// stdout reserved for --xml/--map/--query output the caller may pipe.
var logger = log.New(os.Stderr, "chiselmap: ", 0)

func main() {
	app := &cli.App{
		Name:    "chiselmap",
		Usage:   "Repository context compactor for LLM coding agents",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "map", Usage: "Render the repo map for --target"},
			&cli.StringFlag{Name: "graph-modules", Usage: "Render the import graph rooted at ROOT (default: --target)"},
			&cli.StringSliceFlag{Name: "manifests", Usage: "List discovered workspace members under the given paths"},
			&cli.StringFlag{Name: "inspect", Usage: "Print one file's skeleton plus its symbol table"},
			&cli.StringFlag{Name: "skeleton", Usage: "Print one file's skeleton only"},
			&cli.StringFlag{Name: "target", Usage: "File or directory to operate on", Value: "."},
			&cli.StringFlag{Name: "query", Usage: "Run a vector search query instead of packing"},
			&cli.IntFlag{Name: "query-limit", Usage: "Top-k results for --query"},
			&cli.StringFlag{Name: "embed-model", Usage: "Embedding model identifier override"},
			&cli.IntFlag{Name: "chunk-lines", Usage: "First-N-lines cap per file before embedding"},
			&cli.BoolFlag{Name: "xml", Usage: "Print the packed XML document to stdout instead of only persisting it"},
			&cli.BoolFlag{Name: "full", Usage: "Disable skeletonization, pack full file bodies"},
			&cli.BoolFlag{Name: "huge", Usage: "Force huge-workspace mode"},
			&cli.BoolFlag{Name: "list-members", Usage: "List discovered workspace members for --target"},
			&cli.IntFlag{Name: "budget-tokens", Usage: "Token budget for the packed slice"},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Start the JSON-RPC server over stdio",
				Action: mcpCommand,
			},
		},
		Action: rootAction,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Print(err)
		os.Exit(1)
	}
}

func repoRootFrom(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

func rootAction(c *cli.Context) error {
	target := c.String("target")
	repoRoot, err := repoRootFrom(target)
	if err != nil {
		return err
	}
	cfg := config.Load(repoRoot)
	reg := driver.Default()

	switch {
	case c.String("inspect") != "":
		return runInspect(reg, resolveArg(repoRoot, c.String("inspect")))
	case c.String("skeleton") != "":
		return runSkeleton(reg, resolveArg(repoRoot, c.String("skeleton")))
	case c.Bool("list-members") || len(c.StringSlice("manifests")) > 0:
		return runListMembers(repoRoot, c, cfg)
	case c.String("graph-modules") != "" || c.IsSet("graph-modules"):
		root := c.String("graph-modules")
		if root == "" {
			root = target
		}
		return runGraphModules(reg, resolveArg(repoRoot, root), cfg)
	case c.Bool("map"):
		return runRepoMap(reg, resolveArg(repoRoot, target))
	case c.String("query") != "":
		return runQuery(c, repoRoot, reg, cfg)
	default:
		return runPack(c, repoRoot, reg, cfg, target)
	}
}

func resolveArg(repoRoot, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(repoRoot, p)
}

func runInspect(reg *driver.Registry, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res := skeleton.Skeletonize(reg, path, source)
	fmt.Println(res.Text)
	fmt.Println()
	fmt.Println("# Symbols")
	for _, sym := range skeleton.Symbols(reg, path, source) {
		fmt.Printf("%s %s (lines %d-%d)\n", sym.Kind, sym.Name, sym.StartLine+1, sym.EndLine+1)
	}
	return nil
}

func runSkeleton(reg *driver.Registry, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res := skeleton.Skeletonize(reg, path, source)
	fmt.Println(res.Text)
	return nil
}

func runListMembers(repoRoot string, c *cli.Context, cfg config.Config) error {
	roots := c.StringSlice("manifests")
	if len(roots) == 0 {
		roots = []string{repoRoot}
	}
	for _, root := range roots {
		abs := resolveArg(repoRoot, root)
		members, err := workspace.Discover(abs, cfg.HugeCodebase.IncludeMembers, cfg.HugeCodebase.ExcludeMembers, cfg.HugeCodebase.MemberScanDepth)
		if err != nil {
			return err
		}
		for _, m := range members {
			fmt.Printf("%s\t%s\t%s\n", m.RelPath, m.Kind, m.Name)
		}
	}
	return nil
}

func runGraphModules(reg *driver.Registry, root string, cfg config.Config) error {
	entries, _ := walkfs.Walk(root, walkfs.Options{
		ExtraDenyDirNames: cfg.WalkDenyDirs(),
		MaxFileBytes:      cfg.TokenEstimator.MaxFileBytes,
	})
	relPaths := make([]string, len(entries))
	byRel := make(map[string]string, len(entries))
	for i, e := range entries {
		relPaths[i] = e.RelPath
		byRel[e.RelPath] = e.AbsPath
	}
	graph := rank.BuildImportGraph(reg, root, relPaths, func(rel string) ([]byte, error) {
		return os.ReadFile(byRel[rel])
	})

	sorted := make([]string, 0, len(graph))
	for from := range graph {
		sorted = append(sorted, from)
	}
	sort.Strings(sorted)
	for _, from := range sorted {
		imports := graph[from]
		sort.Strings(imports)
		for _, to := range imports {
			fmt.Printf("%s -> %s\n", from, to)
		}
	}

	inDegree := rank.InDegree(graph)
	fmt.Println("\n# In-degree")
	names := make([]string, 0, len(inDegree))
	for name := range inDegree {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return inDegree[names[i]] > inDegree[names[j]] })
	for _, name := range names {
		fmt.Printf("%d\t%s\n", inDegree[name], name)
	}
	return nil
}

func runRepoMap(reg *driver.Registry, target string) error {
	text, _, err := symbols.RepoMap(reg, target, symbols.RepoMapOptions{})
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func runQuery(c *cli.Context, repoRoot string, reg *driver.Registry, cfg config.Config) error {
	if model := c.String("embed-model"); model != "" {
		cfg.VectorSearch.Model = model
	}
	if n := c.Int("chunk-lines"); n > 0 {
		cfg.VectorSearch.ChunkLines = n
	}

	storePath := filepath.Join(outputDir(repoRoot, cfg), "db", "embeddings.json")
	store := vectorindex.Open(storePath)
	embedder := vectorindex.NewHashEmbedder(128)

	ctx, cancel := signalContext()
	defer cancel()
	if _, _, _, err := vectorindex.Refresh(ctx, reg, repoRoot, store, embedder, cfg.VectorSearch.ChunkLines); err != nil {
		return cerrors.New(cerrors.TypeVectorIndex, "refresh", err).WithPath(storePath).WithRecoverable(true)
	}

	limit := c.Int("query-limit")
	if limit <= 0 {
		limit = cfg.VectorSearch.DefaultQueryLimit
	}
	results, err := vectorindex.Search(store, embedder, c.String("query"), limit)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%.4f\t%s\n", r.Score, r.Path)
	}
	return nil
}

func runPack(c *cli.Context, repoRoot string, reg *driver.Registry, cfg config.Config, target string) error {
	if c.Bool("full") {
		cfg.SkeletonMode = false
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := slice.Slice(ctx, reg, repoRoot, resolveArg(repoRoot, target), cfg, slice.Options{
		BudgetTokens: c.Int("budget-tokens"),
		ForceHuge:    c.Bool("huge"),
	})
	if err != nil {
		return err
	}

	xmlDoc := slice.RenderXML(result)
	outDir := outputDir(repoRoot, cfg)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "active_context.xml"), []byte(xmlDoc), 0o644); err != nil {
		return err
	}

	meta := map[string]any{
		"repoRoot":     repoRoot,
		"target":       target,
		"budgetTokens": c.Int("budget-tokens"),
		"totalTokens":  result.TotalTokens,
		"totalChars":   result.TotalChars,
	}
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "active_context.meta.json"), metaData, 0o644); err != nil {
		return err
	}

	if c.Bool("xml") {
		fmt.Println(xmlDoc)
	} else {
		fmt.Printf("packed %d file(s), %d tokens (%d chars) -> %s\n", len(result.Files), result.TotalTokens, result.TotalChars, filepath.Join(outDir, "active_context.xml"))
	}
	return nil
}

func outputDir(repoRoot string, cfg config.Config) string {
	if cfg.OutputDir == "" {
		return filepath.Join(repoRoot, ".chiselmap")
	}
	return filepath.Join(repoRoot, cfg.OutputDir)
}

func mcpCommand(c *cli.Context) error {
	target := c.String("target")
	if target == "" {
		target = "."
	}
	repoRoot, err := repoRootFrom(target)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return rpc.New(repoRoot).Run(ctx)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
