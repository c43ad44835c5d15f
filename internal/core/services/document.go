package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService is the read side of the catalogue. Without a store it
// behaves as an empty catalogue.
type DocumentService struct {
	store driven.DocumentStore
}

// NewDocumentService wraps store, which may be nil.
func NewDocumentService(store driven.DocumentStore) *DocumentService {
	return &DocumentService{store: store}
}

// List returns the catalogue, newest first. It never returns a nil slice
// without an error.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	if s.store == nil {
		return []domain.Document{}, nil
	}
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

// Get returns one document. Surrounding whitespace in id is ignored.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return nil, fmt.Errorf("document id is required: %w", domain.ErrInvalidInput)
	case s.store == nil:
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return s.store.GetDocument(ctx, id)
}
