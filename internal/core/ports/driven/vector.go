package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorStore stores chunk embeddings and answers similarity queries.
// Implementations must be safe for concurrent use.
type VectorStore interface {
	// Upsert inserts or replaces records by ID. A single call is atomic:
	// either every record is stored or none is.
	// Fails with domain.ErrStoreUnavailable or domain.ErrDimensionMismatch.
	Upsert(ctx context.Context, records []VectorRecord) error

	// Search returns at most k hits ordered by descending score.
	// Fails with domain.ErrStoreUnavailable or domain.ErrDimensionMismatch.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorRecord is a vector and its payload, keyed by chunk ID.
type VectorRecord struct {
	ID      string
	Vector  []float32
	Payload domain.ChunkPayload
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the chunk ID.
	ID string

	// Payload is the metadata stored with the vector.
	Payload domain.ChunkPayload

	// Score is the similarity score, higher is more similar.
	Score float64
}
