package cachestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/devcore/rag-chat/internal/domain/chat"
)

// ValkeyStore keeps one category's entry list as a single JSON value in
// a Valkey-compatible database. The serialized list is replaced whole
// on every save, matching the flat-file backend's semantics.
type ValkeyStore struct {
	client valkey.Client
	key    string
}

// NewValkeyStore constructs a store for the given category.
func NewValkeyStore(client valkey.Client, prefix, category string) *ValkeyStore {
	if prefix == "" {
		prefix = "semcache"
	}
	return &ValkeyStore{client: client, key: prefix + ":" + category}
}

func (s *ValkeyStore) Load(ctx context.Context) ([]chat.CacheEntry, error) {
	result := s.client.Do(ctx, s.client.B().Get().Key(s.key).Build())
	payload, err := result.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cache key %s: %w", s.key, err)
	}
	var entries []chat.CacheEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, fmt.Errorf("decode cache key %s: %w", s.key, err)
	}
	return entries, nil
}

func (s *ValkeyStore) Save(ctx context.Context, entries []chat.CacheEntry) error {
	if entries == nil {
		entries = []chat.CacheEntry{}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode cache entries: %w", err)
	}
	cmd := s.client.B().Set().Key(s.key).Value(string(payload)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("save cache key %s: %w", s.key, err)
	}
	return nil
}

var _ chat.CacheBackend = (*ValkeyStore)(nil)
