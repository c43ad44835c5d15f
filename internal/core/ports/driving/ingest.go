package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestService indexes uploaded documents.
type IngestService interface {
	// Ingest extracts, chunks, embeds and indexes each file independently.
	// A failing file is reported in the result and never aborts the others.
	// The error is non-nil only when ctx is cancelled.
	Ingest(ctx context.Context, files []domain.FileUpload) (domain.IngestResult, error)
}
