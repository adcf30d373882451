package chat

import (
	"context"
	"log/slog"
	"math"
	"sync"
)

// DefaultSimilarityThreshold is the cosine similarity a stored entry
// must reach before its response is reused.
const DefaultSimilarityThreshold = 0.85

// SemanticCache answers near-duplicate questions from previously
// generated responses. Lookups are keyed by embedding similarity, not
// exact text, so rephrasings of an answered question still hit.
//
// The whole entry list is rewritten on every Set. That makes concurrent
// writers from separate processes unsafe by design; the in-process
// mutex only covers the single-service case.
type SemanticCache struct {
	mu      sync.RWMutex
	backend CacheBackend
	entries []CacheEntry
	logger  *slog.Logger
}

// NewSemanticCache loads existing entries from the backend. A missing
// or corrupt store starts the cache empty instead of failing startup;
// the suppressed condition is logged.
func NewSemanticCache(ctx context.Context, backend CacheBackend, logger *slog.Logger) *SemanticCache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &SemanticCache{
		backend: backend,
		logger:  logger.With("component", "chat.cache"),
	}
	entries, err := backend.Load(ctx)
	if err != nil {
		c.logger.Warn("cache load failed, starting empty", "error", err)
		entries = nil
	}
	c.entries = entries
	return c
}

// Get scans every stored entry and returns the response of the one most
// similar to the query embedding, provided the similarity reaches the
// threshold. Ties keep the earliest entry in storage order. The caller
// is responsible for marking the record cached and recomputing timing.
func (c *SemanticCache) Get(embedding []float32, threshold float64) (AnswerRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 {
		return AnswerRecord{}, false
	}

	best := -1
	maxSimilarity := math.Inf(-1)
	for i, entry := range c.entries {
		similarity, ok := cosineSimilarity(embedding, entry.Embedding)
		if !ok {
			continue
		}
		if similarity > maxSimilarity {
			maxSimilarity = similarity
			best = i
		}
	}
	if best < 0 || maxSimilarity < threshold {
		return AnswerRecord{}, false
	}
	return c.entries[best].Response, true
}

// Set appends a new entry and rewrites the backing store in full.
func (c *SemanticCache) Set(ctx context.Context, query string, embedding []float32, response AnswerRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	vector := make([]float32, len(embedding))
	copy(vector, embedding)
	c.entries = append(c.entries, CacheEntry{
		Query:     query,
		Response:  response,
		Embedding: vector,
	})
	return c.backend.Save(ctx, c.entries)
}

// Clear truncates the cache to empty and persists the empty state.
func (c *SemanticCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	return c.backend.Save(ctx, nil)
}

// Len reports the number of stored entries.
func (c *SemanticCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cosineSimilarity computes dot(a,b)/(‖a‖·‖b‖) in float64. It reports
// ok=false when the vectors differ in length or either norm is zero,
// cases where the similarity is undefined and the entry cannot match.
func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0, false
	}
	return dot / den, true
}
