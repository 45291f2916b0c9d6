package vectorindex

import (
	"bytes"
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/chiselmap/internal/driver"
	"github.com/standardbeagle/chiselmap/internal/walkfs"
)

const maxSnippetBytes = 16 * 1024
const parallelReadLimit = 8

type fileRead struct {
	relPath string
	absPath string
	size    int64
	modNs   int64
	content []byte
}

// Refresh implements spec §4.I's JIT pass: stat-sweep, delta detect,
// parallel read of ADD/UPDATE files, sequential embed, apply deletes,
// persist once.
func Refresh(ctx context.Context, reg *driver.Registry, root string, store *Store, embedder Embedder, chunkLines int) (added, updated, deleted int, err error) {
	entries, _ := walkfs.Walk(root, walkfs.Options{})

	onDisk := make(map[string]walkfs.Entry, len(entries))
	for _, e := range entries {
		onDisk[e.RelPath] = e
	}

	var toRead []fileRead
	for rel, e := range onDisk {
		existing, inIndex := store.Entries[rel]
		modNs := e.ModTime
		if !inIndex {
			toRead = append(toRead, fileRead{relPath: rel, absPath: e.AbsPath, size: e.Size, modNs: modNs})
			added++
		} else if existing.Size != e.Size || existing.ModifiedNs != modNs {
			toRead = append(toRead, fileRead{relPath: rel, absPath: e.AbsPath, size: e.Size, modNs: modNs})
			updated++
		}
	}
	for rel := range store.Entries {
		if _, stillExists := onDisk[rel]; !stillExists {
			deleted++
		}
	}

	reads, err := parallelRead(ctx, toRead)
	if err != nil {
		return 0, 0, 0, err
	}

	for _, r := range reads {
		if bytes.IndexByte(r.content, 0) >= 0 {
			continue
		}
		snippet := firstLines(r.content, chunkLines, maxSnippetBytes)
		doc := "passage: file: " + r.relPath + "\n" + snippet
		vec, embedErr := embedder.Embed(doc)
		if embedErr != nil {
			continue
		}
		store.Entries[r.relPath] = Entry{Size: r.size, ModifiedNs: r.modNs, Embedding: vec}
	}

	for rel := range store.Entries {
		if _, stillExists := onDisk[rel]; !stillExists {
			delete(store.Entries, rel)
		}
	}

	if err := store.Save(); err != nil {
		return added, updated, deleted, err
	}
	return added, updated, deleted, nil
}

// parallelRead reads every candidate file concurrently, bounded by a
// semaphore, since the embedding model itself is strictly single-threaded
// and only the I/O phase benefits from parallelism (spec §4.I, §5).
func parallelRead(ctx context.Context, candidates []fileRead) ([]fileRead, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(parallelReadLimit)

	out := make([]fileRead, len(candidates))
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			data, err := walkfs.ReadFile(c.absPath, 0)
			if err != nil {
				out[i] = fileRead{} // dropped below
				return nil
			}
			c.content = data
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	filtered := out[:0]
	for _, r := range out {
		if r.relPath != "" {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func firstLines(content []byte, chunkLines int, maxBytes int) string {
	if chunkLines <= 0 {
		chunkLines = 60
	}
	lines := 0
	end := 0
	for i, b := range content {
		if b == '\n' {
			lines++
			if lines >= chunkLines {
				end = i + 1
				break
			}
		}
		end = i + 1
	}
	if end > maxBytes {
		end = maxBytes
	}
	return string(content[:end])
}
