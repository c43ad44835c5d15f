package postprocessors

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
	"github.com/custodia-labs/docqa/internal/postprocessors/metadata"
)

// NewIngestPipeline builds the standard ingestion pipeline: page chunking
// followed by metadata attachment. Invalid chunk settings fail with a
// *domain.ConfigurationError.
func NewIngestPipeline(cfg domain.ChunkingSettings) (*Pipeline, error) {
	chunkProcessor, err := chunker.New(
		chunker.WithChunkSize(cfg.Size),
		chunker.WithOverlap(cfg.Overlap),
	)
	if err != nil {
		return nil, err
	}

	return NewPipeline(chunkProcessor, metadata.NewRegistry()), nil
}
