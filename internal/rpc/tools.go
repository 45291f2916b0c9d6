package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/chiselmap/internal/checkpoint"
	cerrors "github.com/standardbeagle/chiselmap/internal/errors"
	"github.com/standardbeagle/chiselmap/internal/skeleton"
	"github.com/standardbeagle/chiselmap/internal/slice"
	"github.com/standardbeagle/chiselmap/internal/symbols"
	"github.com/standardbeagle/chiselmap/internal/vectorindex"
	"github.com/standardbeagle/chiselmap/internal/walkfs"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "read_symbol",
		Description: "Read one named declaration's full source text from a file.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"path": stringProp("file to search"),
			"name": stringProp("symbol name"),
		}, "path", "name"),
	}, s.handleReadSymbol)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "find_usages",
		Description: "Find every call/type-reference/field-init/other usage of a name under a directory.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"target_dir": stringProp("directory to search"),
			"name":       stringProp("identifier to find"),
		}, "target_dir", "name"),
	}, s.handleFindUsages)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "call_hierarchy",
		Description: "Show outgoing and inbound calls for a named function/method under a directory.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"target_dir": stringProp("directory to search"),
			"name":       stringProp("function/method name"),
		}, "target_dir", "name"),
	}, s.handleCallHierarchy)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "repo_map",
		Description: "Render a hierarchical map of a directory's files and public symbols.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"target_dir":       stringProp("directory to map"),
			"search_filter":    stringProp("comma-separated OR substrings"),
			"char_budget":      intProp("max output characters"),
			"ignore_gitignore": boolProp("skip .gitignore rules"),
		}, "target_dir"),
	}, s.handleRepoMap)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "propagation_checklist",
		Description: "Render a Markdown checklist of every file referencing a name, grouped by language family.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"target_dir": stringProp("directory to search"),
			"name":       stringProp("identifier to find"),
		}, "target_dir", "name"),
	}, s.handlePropagationChecklist)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "slice",
		Description: "Pack a ranked, budgeted slice of the repository (or one workspace member) into an XML context document.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"target":        stringProp("file or directory, defaults to repo root"),
			"budget_tokens": intProp("token budget, 0 means unbounded"),
			"huge":          boolProp("force huge-workspace mode"),
		}),
	}, s.handleSlice)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "vector_search",
		Description: "Refresh the vector index and return the top-k files matching a natural-language query.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"query": stringProp("search text"),
			"limit": intProp("max results, defaults to configured default"),
		}, "query"),
	}, s.handleVectorSearch)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "checkpoint_save",
		Description: "Save a tagged snapshot of one symbol's current source text.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"path":      stringProp("file containing the symbol"),
			"symbol":    stringProp("symbol name"),
			"tag":       stringProp("checkpoint tag"),
			"namespace": stringProp("optional namespace"),
		}, "path", "symbol", "tag"),
	}, s.handleCheckpointSave)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "checkpoint_list",
		Description: "List saved checkpoints grouped by tag.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"namespace": stringProp("optional namespace, all namespaces if omitted"),
		}),
	}, s.handleCheckpointList)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "checkpoint_delete",
		Description: "Delete checkpoints matching a tag and/or symbol filter, or an entire namespace.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"tag":       stringProp("optional tag filter"),
			"symbol":    stringProp("optional symbol filter"),
			"namespace": stringProp("optional namespace"),
		}),
	}, s.handleCheckpointDelete)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "checkpoint_compare",
		Description: "Render two tagged versions of a symbol (or the live on-disk version) side by side.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"path":      stringProp("file containing the symbol, used when a side is __live__"),
			"symbol":    stringProp("symbol name"),
			"tag_a":     stringProp("first tag, or __live__"),
			"tag_b":     stringProp("second tag, or __live__"),
			"namespace": stringProp("optional namespace"),
		}, "symbol", "tag_a", "tag_b"),
	}, s.handleCheckpointCompare)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "inspect",
		Description: "Print one file's skeleton plus its symbol table.",
		InputSchema: schemaObject(map[string]*jsonschema.Schema{
			"path": stringProp("file to inspect"),
		}, "path"),
	}, s.handleInspect)
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	var args map[string]any
	if len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, cerrors.New(cerrors.TypeToolArgument, req.Params.Name, err)
	}
	return args, nil
}

func (s *Server) resolvePath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.repoRoot, rel)
}

func (s *Server) handleReadSymbol(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	path := s.resolvePath(argString(args, "path"))
	source := readFileOrEmpty(path)
	if source == nil {
		return s.errResult(cerrors.New(cerrors.TypeIO, "read_symbol", os.ErrNotExist).WithPath(path))
	}
	res := symbols.ReadSymbol(s.reg, path, source, argString(args, "name"))
	if !res.Found {
		return textResult(fmt.Sprintf("symbol not found; candidates: %v", res.Candidates), true), nil
	}
	return textResult(res.Text, false), nil
}

func (s *Server) handleFindUsages(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	dir := s.resolvePath(argString(args, "target_dir"))
	grouped := symbols.FindUsages(ctx, s.reg, dir, argString(args, "name"))
	return textResult(symbols.RenderUsages(grouped), false), nil
}

// findDefinitionFile locates the first file under dir containing name as
// a skeleton symbol, for tools that take only (target_dir, name).
func (s *Server) findDefinitionFile(dir, name string) (string, []byte, bool) {
	entries, _ := walkfs.Walk(dir, walkfs.Options{
		ExtraDenyDirNames: s.cfg.WalkDenyDirs(),
		MaxFileBytes:      s.cfg.TokenEstimator.MaxFileBytes,
	})
	for _, e := range entries {
		source, err := walkfs.ReadFile(e.AbsPath, s.cfg.TokenEstimator.MaxFileBytes)
		if err != nil {
			continue
		}
		for _, sym := range skeleton.Symbols(s.reg, e.AbsPath, source) {
			if sym.Name == name {
				return e.AbsPath, source, true
			}
		}
	}
	return "", nil, false
}

func (s *Server) handleCallHierarchy(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	dir := s.resolvePath(argString(args, "target_dir"))
	name := argString(args, "name")

	defPath, source, found := s.findDefinitionFile(dir, name)
	if !found {
		return textResult(fmt.Sprintf("call_hierarchy: no definition found for %q under %s", name, dir), true), nil
	}
	res, ok := symbols.CallHierarchy(s.reg, dir, defPath, source, name)
	if !ok {
		return textResult(fmt.Sprintf("call_hierarchy: could not analyze %q", name), true), nil
	}

	text := fmt.Sprintf("# %s\nOutgoing: %v\n\nIncoming:\n", name, res.Outgoing)
	for _, c := range res.Incoming {
		text += fmt.Sprintf("  %s:%d (in %s)\n", c.RelPath, c.Line, c.Enclosing)
	}
	if res.Truncated {
		text += "... (truncated)\n"
	}
	return textResult(text, false), nil
}

func (s *Server) handleRepoMap(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	dir := s.resolvePath(argString(args, "target_dir"))
	var filter []string
	if f := argString(args, "search_filter"); f != "" {
		for _, part := range strings.Split(f, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter = append(filter, part)
			}
		}
	}
	opts := symbols.RepoMapOptions{
		SearchFilter:    filter,
		CharBudget:      argInt(args, "char_budget"),
		IgnoreGitignore: argBool(args, "ignore_gitignore"),
	}
	text, _, err := symbols.RepoMap(s.reg, dir, opts)
	if err != nil {
		return s.errResult(err)
	}
	return textResult(text, false), nil
}

func (s *Server) handlePropagationChecklist(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	dir := s.resolvePath(argString(args, "target_dir"))
	text := symbols.PropagationChecklist(ctx, s.reg, dir, argString(args, "name"))
	return textResult(text, false), nil
}

func (s *Server) handleSlice(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	target := s.repoRoot
	if t := argString(args, "target"); t != "" {
		target = s.resolvePath(t)
	}
	result, err := slice.Slice(ctx, s.reg, s.repoRoot, target, s.cfg, slice.Options{
		BudgetTokens: argInt(args, "budget_tokens"),
		ForceHuge:    argBool(args, "huge"),
	})
	if err != nil {
		return s.errResult(err)
	}
	return textResult(slice.RenderXML(result), false), nil
}

func (s *Server) handleVectorSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	storePath := filepath.Join(s.outputDir(), "db", "embeddings.json")
	store := vectorindex.Open(storePath)
	if _, _, _, err := vectorindex.Refresh(ctx, s.reg, s.repoRoot, store, s.embedder, s.cfg.VectorSearch.ChunkLines); err != nil {
		return s.errResult(cerrors.New(cerrors.TypeVectorIndex, "refresh", err).WithPath(storePath).WithRecoverable(true))
	}
	limit := argInt(args, "limit")
	if limit <= 0 {
		limit = s.cfg.VectorSearch.DefaultQueryLimit
	}
	results, err := vectorindex.Search(store, s.embedder, argString(args, "query"), limit)
	if err != nil {
		return s.errResult(cerrors.New(cerrors.TypeVectorIndex, "search", err))
	}
	text := ""
	for _, r := range results {
		text += fmt.Sprintf("%.4f  %s\n", r.Score, r.Path)
	}
	return textResult(text, false), nil
}

func (s *Server) handleCheckpointSave(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	path := s.resolvePath(argString(args, "path"))
	source := readFileOrEmpty(path)
	if source == nil {
		return s.errResult(cerrors.New(cerrors.TypeIO, "checkpoint_save", os.ErrNotExist).WithPath(path))
	}
	savedPath, err := checkpoint.Save(s.reg, s.outputDir(), path, source, argString(args, "symbol"), argString(args, "tag"), argString(args, "namespace"), time.Now().UnixMilli())
	if err != nil {
		return s.errResult(cerrors.New(cerrors.TypeCheckpoint, "save", err).WithPath(path))
	}
	return textResult(savedPath, false), nil
}

func (s *Server) handleCheckpointList(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	text, err := checkpoint.List(s.outputDir(), argString(args, "namespace"))
	if err != nil {
		return s.errResult(cerrors.New(cerrors.TypeCheckpoint, "list", err).WithRecoverable(true))
	}
	return textResult(text, false), nil
}

func (s *Server) handleCheckpointDelete(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	removed, err := checkpoint.Delete(s.outputDir(), checkpoint.DeleteFilters{
		Tag:    argString(args, "tag"),
		Symbol: argString(args, "symbol"),
	}, argString(args, "namespace"))
	if err != nil {
		return s.errResult(cerrors.New(cerrors.TypeCheckpoint, "delete", err))
	}
	return textResult(fmt.Sprintf("removed %d checkpoint(s)", removed), false), nil
}

func (s *Server) handleCheckpointCompare(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	var liveSource []byte
	livePath := s.resolvePath(argString(args, "path"))
	if argString(args, "tag_a") == checkpoint.LiveTag || argString(args, "tag_b") == checkpoint.LiveTag {
		liveSource = readFileOrEmpty(livePath)
	}
	text, err := checkpoint.Compare(s.reg, s.outputDir(), argString(args, "namespace"), argString(args, "symbol"), argString(args, "tag_a"), argString(args, "tag_b"), livePath, liveSource)
	if err != nil {
		return s.errResult(cerrors.New(cerrors.TypeCheckpoint, "compare", err).WithPath(livePath))
	}
	return textResult(text, false), nil
}

func (s *Server) handleInspect(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return s.errResult(err)
	}
	path := s.resolvePath(argString(args, "path"))
	source := readFileOrEmpty(path)
	if source == nil {
		return s.errResult(cerrors.New(cerrors.TypeIO, "inspect", os.ErrNotExist).WithPath(path))
	}
	res := skeleton.Skeletonize(s.reg, path, source)
	syms := skeleton.Symbols(s.reg, path, source)

	text := res.Text + "\n\n# Symbols\n"
	for _, sym := range syms {
		text += fmt.Sprintf("%s %s (lines %d-%d)\n", sym.Kind, sym.Name, sym.StartLine+1, sym.EndLine+1)
	}
	return textResult(text, false), nil
}
