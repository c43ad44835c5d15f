package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory brute-force vector index.
// Contents are lost when the process exits.
type VectorStore struct {
	mu         sync.RWMutex
	dimensions int
	records    map[string]driven.VectorRecord
}

// NewVectorStore creates an in-memory vector store. A dimensions value of 0
// adopts the length of the first stored vector.
func NewVectorStore(dimensions int) *VectorStore {
	return &VectorStore{
		dimensions: dimensions,
		records:    make(map[string]driven.VectorRecord),
	}
}

// Upsert stores records. The batch is validated before any record is written.
func (s *VectorStore) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dims := s.dimensions
	if dims == 0 {
		dims = len(records[0].Vector)
	}
	for i := range records {
		if err := vecmath.CheckDimensions(dims, len(records[i].Vector)); err != nil {
			return err
		}
	}

	s.dimensions = dims
	for i := range records {
		rec := records[i]
		rec.Vector = append([]float32(nil), rec.Vector...)
		s.records[rec.ID] = rec
	}
	return nil
}

// Search returns the k most similar records.
func (s *VectorStore) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return []driven.VectorHit{}, nil
	}
	if err := vecmath.CheckDimensions(s.dimensions, len(query)); err != nil {
		return nil, err
	}

	hits := make([]driven.VectorHit, 0, len(s.records))
	for id := range s.records {
		rec := s.records[id]
		hits = append(hits, driven.VectorHit{
			ID:      rec.ID,
			Payload: rec.Payload,
			Score:   vecmath.Cosine(query, rec.Vector),
		})
	}
	return vecmath.TopK(hits, k), nil
}

// Count returns the number of stored vectors.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}
