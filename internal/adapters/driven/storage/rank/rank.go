// Package rank scores stored embeddings against a query vector and orders
// the results deterministically. Both collection stores share it so they
// return identical rankings for identical data.
package rank

import (
	"math"
	"sort"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Vectors of different length, or with zero magnitude, score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Less orders scored chunks: score descending, then chunk index ascending,
// then locator ascending.
func Less(a, b domain.ScoredChunk) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Chunk.Index != b.Chunk.Index {
		return a.Chunk.Index < b.Chunk.Index
	}
	return a.Chunk.Locator < b.Chunk.Locator
}

// TopK scores every entry against query and returns the best k in
// ranking order.
func TopK(query []float32, entries []domain.Entry, k int) domain.RetrievalResult {
	if k <= 0 || len(entries) == 0 {
		return domain.RetrievalResult{}
	}

	scored := make(domain.RetrievalResult, len(entries))
	for i, e := range entries {
		scored[i] = domain.ScoredChunk{Chunk: e.Chunk, Score: Cosine(query, e.Embedding)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return Less(scored[i], scored[j])
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
