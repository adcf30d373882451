package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	entries []CacheEntry
	loadErr error
	saveErr error
	saves   int
}

func (b *recordingBackend) Load(_ context.Context) ([]CacheEntry, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	out := make([]CacheEntry, len(b.entries))
	copy(out, b.entries)
	return out, nil
}

func (b *recordingBackend) Save(_ context.Context, entries []CacheEntry) error {
	b.saves++
	if b.saveErr != nil {
		return b.saveErr
	}
	b.entries = make([]CacheEntry, len(entries))
	copy(b.entries, entries)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSemanticCacheEmptyMiss(t *testing.T) {
	cache := NewSemanticCache(context.Background(), &recordingBackend{}, testLogger())

	_, hit := cache.Get([]float32{1, 0, 0}, DefaultSimilarityThreshold)
	require.False(t, hit)
	require.Equal(t, 0, cache.Len())
}

func TestSemanticCacheSetGetRoundtrip(t *testing.T) {
	ctx := context.Background()
	backend := &recordingBackend{}
	cache := NewSemanticCache(ctx, backend, testLogger())

	record := AnswerRecord{Answer: "use goroutines", Confidence: 95, Sources: []string{"concurrency.md"}}
	require.NoError(t, cache.Set(ctx, "how do I run things in parallel", []float32{1, 2, 3}, record))
	require.Equal(t, 1, cache.Len())
	require.Len(t, backend.entries, 1)

	got, hit := cache.Get([]float32{1, 2, 3}, DefaultSimilarityThreshold)
	require.True(t, hit)
	require.Equal(t, record, got)
}

func TestSemanticCacheScaleInvariance(t *testing.T) {
	ctx := context.Background()
	cache := NewSemanticCache(ctx, &recordingBackend{}, testLogger())
	require.NoError(t, cache.Set(ctx, "q", []float32{1, 2, 3}, AnswerRecord{Answer: "a"}))

	// Cosine similarity ignores magnitude.
	got, hit := cache.Get([]float32{2, 4, 6}, 0.999)
	require.True(t, hit)
	require.Equal(t, "a", got.Answer)
}

func TestSemanticCacheThresholdRejects(t *testing.T) {
	ctx := context.Background()
	cache := NewSemanticCache(ctx, &recordingBackend{}, testLogger())
	require.NoError(t, cache.Set(ctx, "q", []float32{1, 0, 0}, AnswerRecord{Answer: "a"}))

	_, hit := cache.Get([]float32{0, 1, 0}, DefaultSimilarityThreshold)
	require.False(t, hit)
}

func TestSemanticCacheTieKeepsFirst(t *testing.T) {
	ctx := context.Background()
	cache := NewSemanticCache(ctx, &recordingBackend{}, testLogger())
	require.NoError(t, cache.Set(ctx, "first", []float32{1, 0}, AnswerRecord{Answer: "first answer"}))
	require.NoError(t, cache.Set(ctx, "second", []float32{1, 0}, AnswerRecord{Answer: "second answer"}))

	got, hit := cache.Get([]float32{1, 0}, DefaultSimilarityThreshold)
	require.True(t, hit)
	require.Equal(t, "first answer", got.Answer)
}

func TestSemanticCacheZeroVectorNeverMatches(t *testing.T) {
	ctx := context.Background()
	cache := NewSemanticCache(ctx, &recordingBackend{}, testLogger())
	require.NoError(t, cache.Set(ctx, "q", []float32{0, 0, 0}, AnswerRecord{Answer: "a"}))

	_, hit := cache.Get([]float32{0, 0, 0}, 0)
	require.False(t, hit)
}

func TestSemanticCacheDimensionMismatchSkipped(t *testing.T) {
	ctx := context.Background()
	cache := NewSemanticCache(ctx, &recordingBackend{}, testLogger())
	require.NoError(t, cache.Set(ctx, "q", []float32{1, 0}, AnswerRecord{Answer: "a"}))

	_, hit := cache.Get([]float32{1, 0, 0}, 0)
	require.False(t, hit)
}

func TestSemanticCacheClear(t *testing.T) {
	ctx := context.Background()
	backend := &recordingBackend{}
	cache := NewSemanticCache(ctx, backend, testLogger())
	require.NoError(t, cache.Set(ctx, "q", []float32{1, 0}, AnswerRecord{Answer: "a"}))

	require.NoError(t, cache.Clear(ctx))
	require.Equal(t, 0, cache.Len())
	require.Empty(t, backend.entries)

	_, hit := cache.Get([]float32{1, 0}, 0)
	require.False(t, hit)
}

func TestSemanticCacheCorruptBackendStartsEmpty(t *testing.T) {
	backend := &recordingBackend{loadErr: errors.New("corrupt store")}
	cache := NewSemanticCache(context.Background(), backend, testLogger())
	require.Equal(t, 0, cache.Len())
}

func TestSemanticCacheLoadsExistingEntries(t *testing.T) {
	backend := &recordingBackend{entries: []CacheEntry{
		{Query: "q", Response: AnswerRecord{Answer: "a"}, Embedding: []float32{1, 0}},
	}}
	cache := NewSemanticCache(context.Background(), backend, testLogger())
	require.Equal(t, 1, cache.Len())

	got, hit := cache.Get([]float32{1, 0}, DefaultSimilarityThreshold)
	require.True(t, hit)
	require.Equal(t, "a", got.Answer)
}

func TestCosineSimilarity(t *testing.T) {
	sim, ok := cosineSimilarity([]float32{1, 0}, []float32{1, 0})
	require.True(t, ok)
	require.InDelta(t, 1.0, sim, 1e-9)

	sim, ok = cosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.True(t, ok)
	require.InDelta(t, 0.0, sim, 1e-9)

	sim, ok = cosineSimilarity([]float32{1, 0}, []float32{-1, 0})
	require.True(t, ok)
	require.InDelta(t, -1.0, sim, 1e-9)

	_, ok = cosineSimilarity([]float32{1, 0}, []float32{0, 0})
	require.False(t, ok)

	_, ok = cosineSimilarity(nil, nil)
	require.False(t, ok)
}
