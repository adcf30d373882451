package cachestore

import (
	"context"
	"sync"

	"github.com/devcore/rag-chat/internal/domain/chat"
)

// MemoryStore holds entries in memory only. Useful for tests and for
// running without any persistence configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries []chat.CacheEntry
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) ([]chat.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.CacheEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, entries []chat.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]chat.CacheEntry, len(entries))
	copy(s.entries, entries)
	return nil
}

// Entries returns a copy of the stored list.
func (s *MemoryStore) Entries() []chat.CacheEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.CacheEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

var _ chat.CacheBackend = (*MemoryStore)(nil)
