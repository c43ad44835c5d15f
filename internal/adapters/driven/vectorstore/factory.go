// Package vectorstore selects the vector index and document catalogue
// for the configured backend.
package vectorstore

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore/qdrant"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Stores holds the vector index and the document catalogue opened together.
type Stores struct {
	Vectors   driven.VectorStore
	Documents driven.DocumentStore

	db *sqlite.Store
}

// Open creates the stores for settings.Backend. Dimensions of 0 lets the
// store adopt the size of the first vector written.
//
// The qdrant backend keeps its catalogue in the local SQLite database.
func Open(settings domain.VectorStoreSettings, dimensions int) (*Stores, error) {
	switch settings.Backend {
	case domain.VectorBackendMemory:
		logger.Debug("vector store: in-memory (dimensions=%d)", dimensions)
		return &Stores{
			Vectors:   memory.NewVectorStore(dimensions),
			Documents: memory.NewDocumentStore(),
		}, nil

	case domain.VectorBackendSQLite, "":
		db, err := sqlite.NewStore(settings.Path, dimensions)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		logger.Debug("vector store: sqlite at %s", db.Path())
		return &Stores{
			Vectors:   db.VectorStore(),
			Documents: db.DocumentStore(),
			db:        db,
		}, nil

	case domain.VectorBackendQdrant:
		db, err := sqlite.NewStore(settings.Path, dimensions)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		logger.Debug("vector store: qdrant collection %q at %s", settings.Collection, settings.URL)
		return &Stores{
			Vectors: qdrant.NewStore(qdrant.Config{
				URL:        settings.URL,
				APIKey:     settings.APIKey,
				Collection: settings.Collection,
				Dimensions: dimensions,
			}),
			Documents: db.DocumentStore(),
			db:        db,
		}, nil

	default:
		return nil, domain.NewConfigurationError("vectorstore.backend", "unknown backend %q", settings.Backend)
	}
}

// Close releases the vector index and the database, if any.
func (s *Stores) Close() error {
	var errs []error
	if s.Vectors != nil {
		errs = append(errs, s.Vectors.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
