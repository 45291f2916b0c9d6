package vectorindex

import (
	"math"
	"sort"
)

// SearchResult is one ranked match, higher score first.
type SearchResult struct {
	Path  string
	Score float32
}

// Search implements spec §4.I's Search(query, k): embed the query
// document, compute cosine similarity against every stored embedding,
// return the top-k paths. An empty store yields an empty result.
func Search(store *Store, embedder Embedder, query string, k int) ([]SearchResult, error) {
	if len(store.Entries) == 0 {
		return nil, nil
	}

	queryVec, err := embedder.Embed("query: " + query)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(store.Entries))
	for relPath, entry := range store.Entries {
		results = append(results, SearchResult{Path: relPath, Score: cosine(queryVec, entry.Embedding)})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}
