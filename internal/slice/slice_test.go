package slice

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/chiselmap/internal/config"
	"github.com/standardbeagle/chiselmap/internal/driver"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestSliceFocusFullFileReturnsWholeContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")

	res, err := Slice(context.Background(), driver.Default(), dir, filepath.Join(dir, "main.go"), config.Defaults(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "main.go", res.Files[0].RelPath)
	assert.Contains(t, res.Files[0].Content, "func main()")
}

func TestSlicePlainModeSkeletonizesAndRanks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n")
	writeFile(t, dir, "main_test.go", "package main\n\nfunc TestX() {}\n")

	res, err := Slice(context.Background(), driver.Default(), dir, dir, config.Defaults(), Options{BudgetTokens: 100000})
	require.NoError(t, err)
	require.NotEmpty(t, res.Files)
	assert.Contains(t, res.RepoMap, "main.go")
	assert.Equal(t, "main.go", res.Files[0].RelPath)
	assert.Contains(t, res.Files[0].Content, driver.BraceBodyReplacement)
	assert.NotContains(t, res.Files[0].Content, "println")
}

func TestSliceRespectsBudget(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, dir, filepath.Join("pkg", string(rune('a'+i))+".go"), "package pkg\n\nfunc F() {}\n")
	}

	res, err := Slice(context.Background(), driver.Default(), dir, dir, config.Defaults(), Options{BudgetTokens: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
}

func TestRenderXMLProducesWellFormedDocument(t *testing.T) {
	result := Result{
		RepoMap: "a.go\nb.go",
		Files:   []PackedFile{{RelPath: "a.go", Content: "package a\n"}},
	}
	xml := RenderXML(result)
	assert.Contains(t, xml, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>")
	assert.Contains(t, xml, "<repository_map><![CDATA[")
	assert.Contains(t, xml, `<file path="a.go">`)
}

func TestCompactCargoManifestKeepsOnlySubsetTables(t *testing.T) {
	doc := []byte("[package]\nname = \"demo\"\n\n[profile.release]\nlto = true\n")
	out := compactCargoManifest(doc)
	assert.Contains(t, out, "demo")
	assert.NotContains(t, out, "lto")
}
