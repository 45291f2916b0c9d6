package rpc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "sample.go"), []byte("package sample\n\nfunc Foo() int {\n\treturn 42\n}\n"), 0o644))
	return New(root), root
}

func TestReadSymbolReturnsSourceText(t *testing.T) {
	s, _ := newTestServer(t)
	text, isError, err := s.CallTool("read_symbol", map[string]any{"path": "sample.go", "name": "Foo"})
	require.NoError(t, err)
	assert.False(t, isError)
	assert.Contains(t, text, "return 42")
}

func TestReadSymbolUnknownNameReportsError(t *testing.T) {
	s, _ := newTestServer(t)
	_, isError, err := s.CallTool("read_symbol", map[string]any{"path": "sample.go", "name": "NoSuchSymbol"})
	require.NoError(t, err)
	assert.True(t, isError)
}

func TestInspectRendersSkeletonAndSymbols(t *testing.T) {
	s, _ := newTestServer(t)
	text, isError, err := s.CallTool("inspect", map[string]any{"path": "sample.go"})
	require.NoError(t, err)
	assert.False(t, isError)
	assert.Contains(t, text, "Foo")
	assert.Contains(t, text, "# Symbols")
}

func TestCheckpointSaveListCompareRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)

	savedPath, isError, err := s.CallTool("checkpoint_save", map[string]any{"path": "sample.go", "symbol": "Foo", "tag": "before"})
	require.NoError(t, err)
	require.False(t, isError)
	assert.FileExists(t, savedPath)

	listing, isError, err := s.CallTool("checkpoint_list", map[string]any{})
	require.NoError(t, err)
	require.False(t, isError)
	assert.Contains(t, listing, "before")

	compared, isError, err := s.CallTool("checkpoint_compare", map[string]any{
		"path": "sample.go", "symbol": "Foo", "tag_a": "before", "tag_b": "__live__",
	})
	require.NoError(t, err)
	require.False(t, isError)
	assert.Contains(t, compared, "return 42")
}

func TestSliceToolPacksRepoIntoXML(t *testing.T) {
	s, root := newTestServer(t)
	text, isError, err := s.CallTool("slice", map[string]any{"target": root})
	require.NoError(t, err)
	require.False(t, isError)
	assert.Contains(t, text, "<?xml")
	assert.Contains(t, text, "sample.go")
}

func TestVectorSearchFindsMatchingFile(t *testing.T) {
	s, _ := newTestServer(t)
	text, isError, err := s.CallTool("vector_search", map[string]any{"query": "Foo function"})
	require.NoError(t, err)
	require.False(t, isError)
	assert.Contains(t, text, "sample.go")
}
