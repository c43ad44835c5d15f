// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService maps text to vectors. Documents and questions must be
// embedded by the same model, and Dimensions must equal the vector store's.
type EmbeddingService interface {
	// Embed returns the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order. Failures
	// wrap domain.ErrEmbeddingService or domain.ErrRateLimited.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length the model produces.
	Dimensions() int

	// ModelName identifies the model, e.g. "nomic-embed-text".
	ModelName() string

	// Ping sends the cheapest request the provider accepts.
	Ping(ctx context.Context) error

	Close() error
}
