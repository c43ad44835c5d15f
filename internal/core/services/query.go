package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService composes retrieval and answer assembly.
type QueryService struct {
	retrieval *RetrievalService
	assembler *AnswerAssembler
}

// NewQueryService creates a new query service.
func NewQueryService(retrieval *RetrievalService, assembler *AnswerAssembler) *QueryService {
	return &QueryService{
		retrieval: retrieval,
		assembler: assembler,
	}
}

// AnswerQuery retrieves relevant chunks and assembles a grounded answer.
// Every failure, including a panic in a collaborator, is reported as an
// unsuccessful result.
func (s *QueryService) AnswerQuery(ctx context.Context, query domain.Query) (result domain.AnswerResult) {
	logger.Section("Answer Query")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("answer query panicked: %v", r)
			result = domain.FailedAnswer(fmt.Errorf("internal error: %v", r))
		}
	}()

	retrieved, err := s.retrieval.Retrieve(ctx, query)
	if err != nil {
		logger.Warn("retrieval failed: %v", err)
		return domain.FailedAnswer(err)
	}

	return s.assembler.Assemble(ctx, query, retrieved)
}

// Retrieve returns the most relevant chunks without generating an answer.
func (s *QueryService) Retrieve(ctx context.Context, query domain.Query) ([]domain.RetrievedChunk, error) {
	return s.retrieval.Retrieve(ctx, query)
}
