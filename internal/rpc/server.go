// Package rpc implements the RPC dispatcher (spec §4.K): a line-delimited
// JSON-RPC server over stdio, built on the same modelcontextprotocol
// SDK the teacher uses, wiring every component above into tool calls.
package rpc

import (
	"context"
	"log"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/chiselmap/internal/config"
	"github.com/standardbeagle/chiselmap/internal/driver"
	"github.com/standardbeagle/chiselmap/internal/vectorindex"
	"github.com/standardbeagle/chiselmap/internal/version"
)

// Server wraps the mcp.Server with the repo context every tool operates
// against.
type Server struct {
	mcp      *mcp.Server
	reg      *driver.Registry
	repoRoot string
	cfg      config.Config
	embedder vectorindex.Embedder
	logger   *log.Logger
}

// New constructs a Server rooted at repoRoot, loading its configuration
// and registering every tool named in spec §4.K. Diagnostics go to stderr,
// never stdout: the stdio transport owns stdout for protocol framing.
func New(repoRoot string) *Server {
	cfg := config.Load(repoRoot)
	s := &Server{
		mcp:      mcp.NewServer(&mcp.Implementation{Name: "chiselmap", Version: version.Version}, nil),
		reg:      driver.Default(),
		repoRoot: repoRoot,
		cfg:      cfg,
		embedder: vectorindex.NewHashEmbedder(128),
		logger:   log.New(os.Stderr, "chiselmap: ", log.LstdFlags),
	}
	s.registerTools()
	return s
}

// Run serves requests over stdio until stdin closes (spec §5: the process's
// lifetime is its stdin, no cancellation mid-request).
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

// errResult renders err as a tool-level failure (spec §7: "tool-level
// argument errors - CallToolResult{isError:true}"), logging it first since
// the client never sees anything written here.
func (s *Server) errResult(err error) (*mcp.CallToolResult, error) {
	s.logger.Printf("%v", err)
	return textResult(err.Error(), true), nil
}

func schemaObject(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func stringProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func intProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: desc}
}

func boolProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: desc}
}

// outputDir resolves the configured output directory against repoRoot.
func (s *Server) outputDir() string {
	if s.cfg.OutputDir == "" {
		return s.repoRoot + "/.chiselmap"
	}
	return s.repoRoot + "/" + s.cfg.OutputDir
}

func readFileOrEmpty(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}
