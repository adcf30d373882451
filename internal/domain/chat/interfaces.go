package chat

import (
	"context"

	"github.com/devcore/rag-chat/pkg/metrics"
)

// Embedder produces a fixed-length vector for a text. Deterministic for
// a given model and input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever returns up to k chunks nearest to the query vector, most
// similar first. It may return fewer than k.
type Retriever interface {
	SearchByVector(ctx context.Context, embedding []float32, k int) ([]RetrievedChunk, error)
}

// Generation carries the completion output and its token accounting.
type Generation struct {
	Text  string
	Usage *metrics.TokenUsage
}

// Generator produces an answer for a fully framed prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (Generation, error)
}

// CacheBackend persists the full cache entry list for one category.
// Load reports nil entries without error when the store does not exist
// yet; Save overwrites the whole store.
type CacheBackend interface {
	Load(ctx context.Context) ([]CacheEntry, error)
	Save(ctx context.Context, entries []CacheEntry) error
}

// LegacyReply is the parsed result of the legacy intent endpoint.
type LegacyReply struct {
	Answer    string
	HasIntent bool
}

// LegacyClient forwards raw question text to the legacy intent endpoint.
type LegacyClient interface {
	Detect(ctx context.Context, text string) (LegacyReply, error)
}
