package walkfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestWalkSkipsDenyDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":                 "package main\n",
		"node_modules/pkg/a.js":   "x",
		"vendor/lib/b.go":         "y",
		".git/HEAD":               "ref: refs/heads/main\n",
	})

	entries, diag := Walk(root, Options{})

	var rels []string
	for _, e := range entries {
		rels = append(rels, e.RelPath)
	}
	assert.Contains(t, rels, "main.go")
	assert.NotContains(t, rels, "node_modules/pkg/a.js")
	assert.NotContains(t, rels, "vendor/lib/b.go")
	assert.NotContains(t, rels, ".git/HEAD")
	assert.Equal(t, 1, diag.Kept)
}

func TestWalkHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "*.log\nbuild/\n",
		"app.go":     "package app\n",
		"debug.log":  "trace",
		"build/out":  "binary",
	})

	entries, _ := Walk(root, Options{})
	var rels []string
	for _, e := range entries {
		rels = append(rels, e.RelPath)
	}
	assert.Contains(t, rels, "app.go")
	assert.NotContains(t, rels, "debug.log")
	assert.NotContains(t, rels, "build/out")
}

func TestWalkIgnoreGitignoreOption(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "*.log\n",
		"debug.log":  "trace",
	})

	entries, _ := Walk(root, Options{IgnoreGitignore: true})
	var rels []string
	for _, e := range entries {
		rels = append(rels, e.RelPath)
	}
	assert.Contains(t, rels, "debug.log")
}

func TestWalkExcludesOversizeFile(t *testing.T) {
	root := t.TempDir()
	big := make([]byte, MaxFileBytes+1)
	require.NoError(t, os.WriteFile(filepath.Join(root, "huge.bin"), big, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "small.go"), []byte("package main\n"), 0o644))

	entries, diag := Walk(root, Options{})
	var rels []string
	for _, e := range entries {
		rels = append(rels, e.RelPath)
	}
	assert.NotContains(t, rels, "huge.bin")
	assert.Contains(t, rels, "small.go")
	assert.Equal(t, 1, diag.IgnoredOrError)
}

func TestWalkSkipsOwnOutputDirByDefault(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":                       "package main\n",
		".chiselmap/active_context.xml": "<root/>",
		".chiselmap/db/embeddings.json": "{}",
	})

	entries, _ := Walk(root, Options{})
	var rels []string
	for _, e := range entries {
		rels = append(rels, e.RelPath)
	}
	assert.Contains(t, rels, "main.go")
	assert.NotContains(t, rels, ".chiselmap/active_context.xml")
	assert.NotContains(t, rels, ".chiselmap/db/embeddings.json")
}

func TestWalkEnforcesConfiguredSoftCap(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "medium.go"), make([]byte, 2000), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "small.go"), make([]byte, 100), 0o644))

	entries, diag := Walk(root, Options{MaxFileBytes: 1000})
	var rels []string
	for _, e := range entries {
		rels = append(rels, e.RelPath)
	}
	assert.NotContains(t, rels, "medium.go")
	assert.Contains(t, rels, "small.go")
	assert.Equal(t, 1, diag.IgnoredOrError)
}

func TestReadFileEnforcesSoftCap(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "medium.go")
	require.NoError(t, os.WriteFile(path, make([]byte, 2000), 0o644))

	_, err := ReadFile(path, 1000)
	assert.Error(t, err)

	data, err := ReadFile(path, 0)
	assert.NoError(t, err)
	assert.Len(t, data, 2000)
}

func TestSplitExtHandlesDoubleExtension(t *testing.T) {
	assert.Equal(t, ".d.ts", SplitExt("foo/bar.d.ts"))
	assert.Equal(t, ".ts", SplitExt("foo/bar.ts"))
	assert.Equal(t, ".go", SplitExt("main.GO"))
}
