package cachestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devcore/rag-chat/internal/domain/chat"
)

func TestMemoryStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	entries, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)

	saved := []chat.CacheEntry{{Query: "q", Response: chat.AnswerRecord{Answer: "a"}, Embedding: []float32{1}}}
	require.NoError(t, store.Save(ctx, saved))

	entries, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, saved, entries)
	require.Equal(t, saved, store.Entries())

	// Mutating the returned slice must not touch the stored copy.
	entries[0].Query = "mutated"
	require.Equal(t, "q", store.Entries()[0].Query)
}
