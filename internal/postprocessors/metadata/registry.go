// Package metadata stamps chunks with document identity and chunk identifiers.
package metadata

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.PostProcessor = (*Registry)(nil)

// Registry associates chunks with their document's metadata.
// Every attached chunk gets a fresh random 128-bit identifier, so re-ingesting
// an identical file never reuses chunk IDs.
type Registry struct {
	newID func() string
}

// Option configures the registry.
type Option func(*Registry)

// WithIDGenerator replaces the chunk ID generator. Intended for tests.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewRegistry creates a metadata registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the processor name.
func (r *Registry) Name() string {
	return "metadata"
}

// Attach returns copies of chunks stamped with the document ID, title, author
// and a new chunk ID. Blank title and author take their defaults.
func (r *Registry) Attach(chunks []domain.Chunk, doc *domain.Document) []domain.Chunk {
	meta := doc.Metadata.WithDefaults(doc.Filename)

	out := make([]domain.Chunk, len(chunks))
	for i, chunk := range chunks {
		chunk.ID = r.newID()
		chunk.DocumentID = doc.ID
		chunk.Title = meta.Title
		chunk.Author = meta.Author
		out[i] = chunk
	}
	return out
}

// Process attaches metadata to the chunks produced by earlier processors.
func (r *Registry) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("document has no id: %w", domain.ErrInvalidInput)
	}
	return r.Attach(chunks, doc), nil
}
