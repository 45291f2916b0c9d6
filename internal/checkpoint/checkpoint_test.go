package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/chiselmap/internal/driver"
)

const sampleSource = `package sample

func Foo() int {
	return 42
}
`

func TestSaveThenListShowsSymbolUnderTag(t *testing.T) {
	outDir := t.TempDir()
	path, err := Save(driver.Default(), outDir, "sample.go", []byte(sampleSource), "Foo", "before-refactor", "", 1000)
	require.NoError(t, err)
	assert.FileExists(t, path)

	listing, err := List(outDir, "")
	require.NoError(t, err)
	assert.Contains(t, listing, "Foo")
	assert.Contains(t, listing, "before-refactor")
}

func TestSaveUnknownSymbolFails(t *testing.T) {
	outDir := t.TempDir()
	_, err := Save(driver.Default(), outDir, "sample.go", []byte(sampleSource), "NoSuchSymbol", "tag", "", 1000)
	assert.Error(t, err)
}

func TestDeleteByTagRemovesOnlyMatching(t *testing.T) {
	outDir := t.TempDir()
	_, err := Save(driver.Default(), outDir, "sample.go", []byte(sampleSource), "Foo", "keep-me", "", 1000)
	require.NoError(t, err)
	_, err = Save(driver.Default(), outDir, "sample.go", []byte(sampleSource), "Foo", "drop-me", "", 2000)
	require.NoError(t, err)

	removed, err := Delete(outDir, DeleteFilters{Tag: "drop-me"}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	listing, err := List(outDir, "")
	require.NoError(t, err)
	assert.Contains(t, listing, "keep-me")
	assert.NotContains(t, listing, "drop-me")
}

func TestCompareLiveAgainstSavedTag(t *testing.T) {
	outDir := t.TempDir()
	_, err := Save(driver.Default(), outDir, "sample.go", []byte(sampleSource), "Foo", "v1", "", 1000)
	require.NoError(t, err)

	updated := `package sample

func Foo() int {
	return 43
}
`
	text, err := Compare(driver.Default(), outDir, "", "Foo", "v1", LiveTag, "sample.go", []byte(updated))
	require.NoError(t, err)
	assert.Contains(t, text, "return 42")
	assert.Contains(t, text, "return 43")
}

func TestDeleteNamespaceWithEmptyFiltersPurgesDirectory(t *testing.T) {
	outDir := t.TempDir()
	_, err := Save(driver.Default(), outDir, "sample.go", []byte(sampleSource), "Foo", "v1", "ns-a", 1000)
	require.NoError(t, err)

	removed, err := Delete(outDir, DeleteFilters{}, "ns-a")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(outDir, "checkpoints", "ns-a"))
	assert.True(t, os.IsNotExist(err))
}
