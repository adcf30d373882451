package cachestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devcore/rag-chat/internal/domain/chat"
)

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(t.TempDir(), "dev")

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, entries)
}

func TestFileStoreEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev_cache.json"), []byte("  \n"), 0o644))
	store := NewFileStore(dir, "dev")

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, entries)
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev_cache.json"), []byte("{not json"), 0o644))
	store := NewFileStore(dir, "dev")

	_, err := store.Load(context.Background())
	require.Error(t, err)
}

func TestFileStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir, "dev")

	entries := []chat.CacheEntry{
		{
			Query:     "how do I deploy",
			Response:  chat.AnswerRecord{Answer: "use the cli", Confidence: 94, Sources: []string{"guide.md"}},
			Embedding: []float32{0.1, 0.2, 0.3},
		},
	}
	require.NoError(t, store.Save(ctx, entries))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, entries, loaded)
}

func TestFileStoreSaveNilWritesEmptyList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir, "dev")

	require.NoError(t, store.Save(ctx, nil))

	data, err := os.ReadFile(filepath.Join(dir, "dev_cache.json"))
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(data))
}

func TestFileStoreCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	store := NewFileStore(dir, "dev")

	require.NoError(t, store.Save(ctx, []chat.CacheEntry{}))
	_, err := os.Stat(filepath.Join(dir, "dev_cache.json"))
	require.NoError(t, err)
}
