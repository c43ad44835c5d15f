package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// MockIngestService records the files it was given.
type MockIngestService struct {
	mu    sync.Mutex
	files []domain.FileUpload
	err   error
}

func (m *MockIngestService) Ingest(_ context.Context, files []domain.FileUpload) (domain.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.IngestResult{}, m.err
	}
	m.files = append(m.files, files...)

	result := domain.IngestResult{}
	for i, f := range files {
		if !bytes.HasPrefix(f.Content, []byte("%PDF")) {
			result.Failures = append(result.Failures, domain.IngestFailure{
				Filename: f.Filename,
				Reason:   "not a PDF",
			})
			continue
		}
		result.DocumentIDs = append(result.DocumentIDs, fmt.Sprintf("doc-%d", i+1))
	}
	result.Message = fmt.Sprintf("Indexed %d of %d files", len(result.DocumentIDs), len(files))
	return result, nil
}

func (m *MockIngestService) Files() []domain.FileUpload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.FileUpload(nil), m.files...)
}

// MockQueryService answers with a fixed result.
type MockQueryService struct {
	result      domain.AnswerResult
	chunks      []domain.RetrievedChunk
	retrieveErr error
	lastQuery   domain.Query
}

func (m *MockQueryService) AnswerQuery(_ context.Context, query domain.Query) domain.AnswerResult {
	m.lastQuery = query
	return m.result
}

func (m *MockQueryService) Retrieve(_ context.Context, query domain.Query) ([]domain.RetrievedChunk, error) {
	m.lastQuery = query
	return m.chunks, m.retrieveErr
}

// MockDocumentService serves a fixed catalogue.
type MockDocumentService struct {
	docs []domain.Document
	err  error
}

func (m *MockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *MockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// MockSettingsService keeps settings in memory.
type MockSettingsService struct {
	settings domain.AppSettings
	sets     map[string]string
	setErr   error
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *MockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.sets == nil {
		m.sets = make(map[string]string)
	}
	m.sets[key] = value
	switch key {
	case "embedding.provider":
		m.settings.Embedding.Provider = domain.AIProvider(value)
	case "embedding.model":
		m.settings.Embedding.Model = value
	case "embedding.api_key":
		m.settings.Embedding.APIKey = value
	case "llm.provider":
		m.settings.LLM.Provider = domain.AIProvider(value)
	case "llm.model":
		m.settings.LLM.Model = value
	case "llm.api_key":
		m.settings.LLM.APIKey = value
	}
	return nil
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// MockValidator fails the providers it is told to.
type MockValidator struct {
	embeddingErr error
	llmErr       error
}

func (m *MockValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embeddingErr
}

func (m *MockValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest    *MockIngestService
	query     *MockQueryService
	document  *MockDocumentService
	settings  *MockSettingsService
	validator *MockValidator
}

func newTestServices() *testServices {
	settings := domain.DefaultAppSettings()
	settings.Embedding.APIKey = "sk-test-embedding-key"
	settings.LLM.APIKey = "sk-test-llm-key"

	return &testServices{
		ingest: &MockIngestService{},
		query: &MockQueryService{
			result: domain.AnswerResult{
				Answer: "Refunds are accepted within 30 days of purchase.",
				Sources: []domain.SourceAttribution{
					{DocumentID: "doc-1", Title: "Refund Policy", Author: "Legal", PageNumber: 2, ChunkID: "c-1", Score: 0.91},
					{DocumentID: "doc-1", Title: "Refund Policy", Author: domain.DefaultAuthor, PageNumber: 3, ChunkID: "c-2", Score: 0.84},
				},
				Success: true,
			},
			chunks: []domain.RetrievedChunk{
				{
					ChunkID: "c-1",
					Payload: domain.ChunkPayload{
						DocumentID: "doc-1",
						Title:      "Refund Policy",
						Author:     "Legal",
						PageNumber: 2,
						Text:       "Refunds are accepted\n within 30 days.",
					},
					Score: 0.91,
				},
			},
		},
		document: &MockDocumentService{
			docs: []domain.Document{
				{
					ID:         "doc-1",
					Filename:   "refunds.pdf",
					Metadata:   domain.DocumentMetadata{Title: "Refund Policy", Author: "Legal", PageCount: 4},
					ChunkCount: 7,
					CreatedAt:  time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
				},
			},
		},
		settings:  &MockSettingsService{settings: settings},
		validator: &MockValidator{},
	}
}

// setupTestServices installs mocks for every service and returns a cleanup
// func that restores the previous services and resets flag state.
func setupTestServices() func() {
	_, cleanup := setupTestServicesWith()
	return cleanup
}

// setupTestServicesWith is setupTestServices that also returns the mocks.
func setupTestServicesWith() (*testServices, func()) {
	prev := Services{
		Ingest:    ingestService,
		Query:     queryService,
		Document:  documentService,
		Settings:  settingsService,
		Validator: configValidator,
	}
	prevErr := setupErr
	prevKeys := settingKeys

	ts := newTestServices()
	SetServices(Services{
		Ingest:    ts.ingest,
		Query:     ts.query,
		Document:  ts.document,
		Settings:  ts.settings,
		Validator: ts.validator,
	})
	SetSetupError(nil)
	SetSettingKeys([]string{"chunking.overlap", "chunking.size", "retrieval.top_k"})

	return ts, func() {
		SetServices(prev)
		SetSetupError(prevErr)
		SetSettingKeys(prevKeys)
		resetFlags()
	}
}

// clearServices removes every service, for "not configured" tests.
func clearServices() func() {
	prev := Services{
		Ingest:    ingestService,
		Query:     queryService,
		Document:  documentService,
		Settings:  settingsService,
		Validator: configValidator,
	}
	prevErr := setupErr
	SetServices(Services{})
	return func() {
		SetServices(prev)
		SetSetupError(prevErr)
		resetFlags()
	}
}

// resetFlags restores flag variables, since rootCmd is shared between tests.
func resetFlags() {
	verbose = false
	ingestWatch, ingestJSON = false, false
	askTopK, askJSON, askFormat = 0, false, formatText
	searchTopK, searchJSON = 0, false
	documentJSON = false
	serveAddr = ""
	tuiTopK = 0

	_ = mcpServeCmd.Flags().Set("port", "0")
}

var errBoom = errors.New("boom")

// executeCommand runs rootCmd with args and returns everything it printed.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
