package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// RetrievalService embeds a query and returns the nearest chunks.
// It keeps no state between calls and is safe for concurrent use.
type RetrievalService struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorStore
	cfg      domain.RetrievalSettings
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	cfg domain.RetrievalSettings,
) (*RetrievalService, error) {
	if cfg.TopK <= 0 {
		return nil, domain.NewConfigurationError("retrieval.top_k", "must be positive, got %d", cfg.TopK)
	}
	return &RetrievalService{
		embedder: embedder,
		vectors:  vectors,
		cfg:      cfg,
	}, nil
}

// Retrieve returns at most TopK chunks ordered by descending score.
// Order is the vector store's native similarity order; the only post-filter
// is the optional minimum score. No matches is not an error.
func (s *RetrievalService) Retrieve(ctx context.Context, query domain.Query) ([]domain.RetrievedChunk, error) {
	logger.Section("Retrieve")

	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, fmt.Errorf("query cannot be empty: %w", domain.ErrInvalidInput)
	}

	topK := query.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	logger.Debug("Query: %q, top_k: %d", text, topK)

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}

	hits, err := s.vectors.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector store returned %d hits", len(hits))

	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		if len(results) == topK {
			break
		}
		if s.cfg.MinScore != nil && hit.Score < *s.cfg.MinScore {
			logger.Debug("Dropping %s: score %.4f below minimum %.4f", hit.ID, hit.Score, *s.cfg.MinScore)
			continue
		}
		results = append(results, domain.RetrievedChunk{
			ChunkID: hit.ID,
			Payload: hit.Payload,
			Score:   hit.Score,
		})
	}

	return results, nil
}
