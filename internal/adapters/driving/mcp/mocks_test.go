package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer domain.AnswerResult
	chunks []domain.RetrievedChunk
	err    error
	query  domain.Query
}

func (m *mockQueryService) AnswerQuery(_ context.Context, query domain.Query) domain.AnswerResult {
	m.query = query
	return m.answer
}

func (m *mockQueryService) Retrieve(_ context.Context, query domain.Query) ([]domain.RetrievedChunk, error) {
	m.query = query
	return m.chunks, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	files  []domain.FileUpload
	result domain.IngestResult
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, files []domain.FileUpload) (domain.IngestResult, error) {
	m.files = files
	return m.result, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}
