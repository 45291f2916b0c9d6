package vectorindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/chiselmap/internal/driver"
)

func TestOpenMissingFileYieldsEmptyStore(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "embeddings.json"))
	assert.Empty(t, s.Entries)
}

func TestOpenCorruptFileYieldsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "embeddings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s := Open(path)
	assert.Empty(t, s.Entries)
}

func TestRefreshAddsAndDeletesEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\nfunc A() {}\n"), 0o644))

	storePath := filepath.Join(dir, ".chiselmap", "db", "embeddings.json")
	store := Open(storePath)
	embedder := NewHashEmbedder(32)

	added, updated, deleted, err := Refresh(context.Background(), driver.Default(), dir, store, embedder, 60)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 0, updated)
	assert.Equal(t, 0, deleted)
	assert.Len(t, store.Entries, 1)

	require.NoError(t, os.Remove(filepath.Join(dir, "a.go")))
	added, updated, deleted, err = Refresh(context.Background(), driver.Default(), dir, store, embedder, 60)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 0, updated)
	assert.Equal(t, 1, deleted)
	assert.Empty(t, store.Entries)
}

func TestSearchReturnsTopKByCosineSimilarity(t *testing.T) {
	embedder := NewHashEmbedder(32)
	store := Open(filepath.Join(t.TempDir(), "embeddings.json"))

	vecA, _ := embedder.Embed("passage: file: auth.go\nfunc Login() {}")
	vecB, _ := embedder.Embed("passage: file: math.go\nfunc Add() {}")
	store.Entries["auth.go"] = Entry{Embedding: vecA}
	store.Entries["math.go"] = Entry{Embedding: vecB}

	results, err := Search(store, embedder, "login authentication", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "auth.go", results[0].Path)
}

func TestSearchEmptyStoreReturnsEmpty(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "embeddings.json"))
	results, err := Search(store, NewHashEmbedder(32), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
