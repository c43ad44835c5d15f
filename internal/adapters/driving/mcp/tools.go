package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks to ground the answer on (default 5)"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to find similar passages for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	PageNumber int     `json:"page_number"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// IngestInput is the input schema for the ingest_files tool.
type IngestInput struct {
	Paths []string `json:"paths" jsonschema:"PDF files or directories to index"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput is the flat form of a catalogue entry shared by the
// list_documents tool and the document resources.
type DocumentOutput struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at,omitempty"`
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	out := DocumentOutput{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Title:      doc.Metadata.Title,
		Author:     doc.Metadata.Author,
		PageCount:  doc.Metadata.PageCount,
		ChunkCount: doc.ChunkCount,
	}
	if !doc.CreatedAt.IsZero() {
		out.CreatedAt = doc.CreatedAt.Format(time.RFC3339)
	}
	return out
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed PDF documents, citing the pages used",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the document passages most similar to a query",
	}, s.handleSearch)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_files",
			Description: "Index local PDF files; directories are scanned recursively",
		}, s.handleIngest)
	}

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List all indexed documents",
		}, s.handleListDocuments)
	}
}

// handleAsk handles the ask tool invocation.
// A failed answer is reported as a tool error so the assistant sees the reason.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, domain.AnswerResult, error) {
	result := s.ports.Query.AnswerQuery(ctx, domain.Query{Text: input.Question, TopK: input.TopK})
	if !result.Success {
		if result.Retryable {
			return nil, domain.AnswerResult{}, fmt.Errorf("answering question: %s (temporary, retry later)", result.ErrorMessage)
		}
		return nil, domain.AnswerResult{}, fmt.Errorf("answering question: %s", result.ErrorMessage)
	}
	return nil, result, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	chunks, err := s.ports.Query.Retrieve(ctx, domain.Query{Text: input.Query, TopK: input.TopK})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(chunks)),
		Count:   len(chunks),
	}

	for i := range chunks {
		output.Results[i] = SearchResultOutput{
			DocumentID: chunks[i].Payload.DocumentID,
			ChunkID:    chunks[i].ChunkID,
			Title:      chunks[i].Payload.Title,
			Author:     chunks[i].Payload.Author,
			PageNumber: chunks[i].Payload.PageNumber,
			Score:      chunks[i].Score,
			Text:       chunks[i].Payload.Text,
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest_files tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, domain.IngestResult, error) {
	if s.ports.Ingest == nil {
		return nil, domain.IngestResult{}, ErrIngestDisabled
	}
	if len(input.Paths) == 0 {
		return nil, domain.IngestResult{}, fmt.Errorf("no paths given: %w", domain.ErrInvalidInput)
	}

	files, err := filesystem.Collect(ctx, input.Paths)
	if err != nil {
		return nil, domain.IngestResult{}, fmt.Errorf("collecting files: %w", err)
	}

	result, err := s.ports.Ingest.Ingest(ctx, files)
	if err != nil {
		return nil, domain.IngestResult{}, err
	}
	return nil, result, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, fmt.Errorf("listing documents: %w", err)
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(&docs[i])
	}
	return nil, output, nil
}
