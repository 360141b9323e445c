// Package embeddings defines the Provider interface for text-embedding
// backends. The seed generator scores corpus passages and dictionary glosses
// against label descriptions by comparing their vectors.
//
// Implementations must be safe for concurrent use.
package embeddings

import (
	"context"
	"math"
)

// Provider maps texts to dense vectors. All vectors from one Provider share a
// dimensionality.
type Provider interface {
	// EmbedBatch returns one vector per text, in order. On error no partial
	// result is returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelID identifies the embedding model, e.g. "nomic-embed-text".
	ModelID() string
}

// Cosine returns the cosine similarity of a and b. It is 0 when the lengths
// differ or either vector is zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
