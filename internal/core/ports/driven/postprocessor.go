package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// PostProcessor is one stage between extraction and embedding. A stage
// that creates chunks is handed nil; a stage that refines them gets the
// previous stage's output.
type PostProcessor interface {
	// Name labels the stage in logs and errors.
	Name() string

	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns an extracted document into the chunks that
// get embedded.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
