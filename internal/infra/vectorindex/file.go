package vectorindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/devcore/rag-chat/internal/domain/chat"
)

// Document is one embedded chunk of a prebuilt index.
type Document struct {
	Source    string    `json:"source"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// indexFile is the on-disk layout produced by the ingest pipeline.
type indexFile struct {
	Dim    int        `json:"dim"`
	Chunks []Document `json:"chunks"`
}

// FlatIndex answers nearest-neighbour queries with a full scan over an
// in-memory chunk list. Distances are squared L2, matching the index
// builder, so retrieval scores feed the confidence curve unchanged.
type FlatIndex struct {
	dim  int
	docs []Document
}

// Parse decodes an index document from its JSON serialization.
func Parse(data []byte) (*FlatIndex, error) {
	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if file.Dim <= 0 {
		return nil, fmt.Errorf("invalid index dimension %d", file.Dim)
	}
	for i, doc := range file.Chunks {
		if len(doc.Embedding) != file.Dim {
			return nil, fmt.Errorf("chunk %d embedding length %d does not match dimension %d", i, len(doc.Embedding), file.Dim)
		}
	}
	return &FlatIndex{dim: file.Dim, docs: file.Chunks}, nil
}

// LoadFile reads and parses an index file from disk.
func LoadFile(path string) (*FlatIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index file %s: %w", path, err)
	}
	idx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse index file %s: %w", path, err)
	}
	return idx, nil
}

// IndexFileName returns the conventional index file name for a category.
func IndexFileName(category string) string {
	return category + "_index.json"
}

// IndexFilePath joins the index directory and category file name.
func IndexFilePath(dir, category string) string {
	return filepath.Join(dir, IndexFileName(category))
}

// Len reports the number of indexed chunks.
func (i *FlatIndex) Len() int {
	return len(i.docs)
}

// SearchByVector returns up to k chunks ordered by ascending distance.
// Ties keep index order.
func (i *FlatIndex) SearchByVector(_ context.Context, embedding []float32, k int) ([]chat.RetrievedChunk, error) {
	if k < 1 {
		return nil, errors.New("k must be at least 1")
	}
	if len(embedding) != i.dim {
		return nil, fmt.Errorf("query embedding length %d does not match index dimension %d", len(embedding), i.dim)
	}

	results := make([]chat.RetrievedChunk, 0, len(i.docs))
	for _, doc := range i.docs {
		results = append(results, chat.RetrievedChunk{
			Source:   doc.Source,
			Content:  doc.Content,
			Distance: squaredL2(embedding, doc.Embedding),
		})
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

var _ chat.Retriever = (*FlatIndex)(nil)
