package embedding

import (
	"context"
	"hash/fnv"

	"github.com/devcore/rag-chat/internal/domain/chat"
)

// Deterministic avoids network calls by hashing text into a vector.
// Identical inputs always map to identical vectors, which is enough for
// the cache and index plumbing to behave realistically offline.
type Deterministic struct {
	dim int
}

// NewDeterministic constructs the embedder.
func NewDeterministic(dim int) *Deterministic {
	if dim <= 0 {
		dim = 32
	}
	return &Deterministic{dim: dim}
}

// Embed converts the text into a pseudo-random vector.
func (e *Deterministic) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dim)
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(text))
	seed := hash.Sum64()
	for j := 0; j < e.dim; j++ {
		seed = seed*1099511628211 + 1469598103934665603
		vector[j] = float32(seed%997) / 997.0
	}
	return vector, nil
}

var _ chat.Embedder = (*Deterministic)(nil)
