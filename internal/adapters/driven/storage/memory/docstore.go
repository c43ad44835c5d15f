package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps the catalogue in a map. Records are copied in and
// out, and page text is dropped on save.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewDocumentStore returns an empty catalogue.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: map[string]domain.Document{}}
}

// SaveDocument inserts or replaces doc.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	record := *doc
	record.Pages = nil

	s.mu.Lock()
	s.docs[record.ID] = record
	s.mu.Unlock()
	return nil
}

// GetDocument returns a copy of the record for id.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	record, ok := s.docs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// ListDocuments returns every record, newest first, ties broken by ID.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	records := slices.Collect(maps.Values(s.docs))
	s.mu.RUnlock()

	slices.SortFunc(records, func(a, b domain.Document) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if records == nil {
		records = []domain.Document{}
	}
	return records, nil
}
