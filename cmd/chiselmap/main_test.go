package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/chiselmap/internal/config"
)

func TestRepoRootFromFileReturnsParentDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0o644))

	root, err := repoRootFrom(file)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestRepoRootFromDirReturnsItself(t *testing.T) {
	dir := t.TempDir()
	root, err := repoRootFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestResolveArgJoinsRelativePaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/repo", "sub/file.go"), resolveArg("/repo", "sub/file.go"))
	assert.Equal(t, "/abs/file.go", resolveArg("/repo", "/abs/file.go"))
}

func TestOutputDirDefaultsToDotChiselmap(t *testing.T) {
	cfg := config.Defaults()
	cfg.OutputDir = ""
	assert.Equal(t, filepath.Join("/repo", ".chiselmap"), outputDir("/repo", cfg))
}

func TestOutputDirHonorsConfiguredValue(t *testing.T) {
	cfg := config.Defaults()
	cfg.OutputDir = "artifacts"
	assert.Equal(t, filepath.Join("/repo", "artifacts"), outputDir("/repo", cfg))
}
