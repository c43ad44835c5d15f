package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// QueryService answers questions against the indexed documents.
type QueryService interface {
	// AnswerQuery retrieves relevant chunks and generates a grounded answer.
	// Failures are reported in the result, never returned as errors.
	AnswerQuery(ctx context.Context, query domain.Query) domain.AnswerResult

	// Retrieve returns the most relevant chunks without generating an answer.
	Retrieve(ctx context.Context, query domain.Query) ([]domain.RetrievedChunk, error)
}
