package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/devcore/rag-chat/internal/domain/chat"
)

// PostgresIndex serves one category's chunks from a pgvector table.
type PostgresIndex struct {
	pool     *pgxpool.Pool
	category string
}

// NewPostgresIndex constructs the retriever.
func NewPostgresIndex(pool *pgxpool.Pool, category string) *PostgresIndex {
	return &PostgresIndex{pool: pool, category: category}
}

// SearchByVector queries the k nearest chunks by L2 distance.
func (r *PostgresIndex) SearchByVector(ctx context.Context, embedding []float32, k int) ([]chat.RetrievedChunk, error) {
	if k < 1 {
		return nil, errors.New("k must be at least 1")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT source, content, embedding <-> $1 AS distance
		FROM chunks
		WHERE category = $2
		ORDER BY embedding <-> $1
		LIMIT $3
	`, pgvector.NewVector(embedding), r.category, k)
	if err != nil {
		return nil, fmt.Errorf("chunk similarity query: %w", err)
	}
	defer rows.Close()

	out := make([]chat.RetrievedChunk, 0, k)
	for rows.Next() {
		var chunk chat.RetrievedChunk
		if err := rows.Scan(&chunk.Source, &chunk.Content, &chunk.Distance); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		out = append(out, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ chat.Retriever = (*PostgresIndex)(nil)
