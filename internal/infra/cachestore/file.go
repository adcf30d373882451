package cachestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/devcore/rag-chat/internal/domain/chat"
)

// FileStore persists one category's cache entries as a single JSON
// file, rewritten in full on every save.
type FileStore struct {
	path string
}

// NewFileStore builds a store rooted at dir for the given category.
func NewFileStore(dir, category string) *FileStore {
	return &FileStore{path: filepath.Join(dir, category+"_cache.json")}
}

// Load reads the full entry list. A missing or empty file yields nil
// entries without error; unreadable or malformed content is an error
// the caller may choose to swallow.
func (s *FileStore) Load(_ context.Context) ([]chat.CacheEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache file %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []chat.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode cache file %s: %w", s.path, err)
	}
	return entries, nil
}

// Save overwrites the backing file with the given entries. A nil slice
// is persisted as an empty JSON list.
func (s *FileStore) Save(_ context.Context, entries []chat.CacheEntry) error {
	if entries == nil {
		entries = []chat.CacheEntry{}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode cache entries: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write cache file %s: %w", s.path, err)
	}
	return nil
}

var _ chat.CacheBackend = (*FileStore)(nil)
