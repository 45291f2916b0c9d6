package vectorindex

import (
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/surgebase/porter2"
)

// Embedder turns a document string into a fixed-dimension vector. The real
// model loader (spec §1, out of scope) plugs in here; HashEmbedder is the
// deterministic stand-in tests and offline runs use instead.
type Embedder interface {
	Embed(doc string) ([]float32, error)
	Dim() int
}

// HashEmbedder is a dependency-free, fully deterministic Embedder: it
// stems every token with Porter2 and hashes the stem into one of Dim
// buckets, producing a bag-of-stems vector that is then L2-normalized.
// It captures no semantics, but it is stable across runs, which is all
// the cosine-search property tests (spec §8) require.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder constructs a HashEmbedder with the given dimension.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 128
	}
	return &HashEmbedder{dim: dim}
}

func (h *HashEmbedder) Dim() int { return h.dim }

func (h *HashEmbedder) Embed(doc string) ([]float32, error) {
	vec := make([]float32, h.dim)
	for _, tok := range tokenize(doc) {
		stem := porter2.Stem(tok)
		bucket := xxhash.Sum64String(stem) % uint64(h.dim)
		vec[bucket]++
	}
	normalize(vec)
	return vec, nil
}

func tokenize(doc string) []string {
	return strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(sumSq))
	for i := range vec {
		vec[i] *= norm
	}
}
