package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// mockExtractor returns canned extractions keyed by filename.
type mockExtractor struct {
	extractions map[string]*domain.Extraction
	errs        map[string]error
}

func (m *mockExtractor) Extract(_ context.Context, filename string, _ []byte) (*domain.Extraction, error) {
	if err, ok := m.errs[filename]; ok {
		return nil, err
	}
	if ext, ok := m.extractions[filename]; ok {
		return ext, nil
	}
	return nil, domain.ErrUnsupportedFormat
}

// mockEmbeddingService returns a fixed query vector for Embed and a distinct
// vector per text for EmbedBatch.
type mockEmbeddingService struct {
	mu         sync.Mutex
	query      []float32
	err        error
	short      bool
	blank      bool
	batchSizes []int
	embedCalls int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.query, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.err != nil {
		return nil, m.err
	}
	n := len(texts)
	if m.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{1, float32(len(texts[i])), 0}
	}
	if m.blank && n > 0 {
		out[n-1] = nil
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return 3 }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) batches() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.batchSizes...)
}

// mockGenerator records what it was asked to answer.
type mockGenerator struct {
	answer  string
	err     error
	panics  bool
	calls   int
	query   string
	context string
}

func (m *mockGenerator) Answer(_ context.Context, query, context string) (string, error) {
	if m.panics {
		panic("generator exploded")
	}
	m.calls++
	m.query = query
	m.context = context
	return m.answer, m.err
}

// failingVectorStore fails every call with err.
type failingVectorStore struct {
	err error
}

func (f *failingVectorStore) Upsert(_ context.Context, _ []driven.VectorRecord) error {
	return f.err
}

func (f *failingVectorStore) Search(_ context.Context, _ []float32, _ int) ([]driven.VectorHit, error) {
	return nil, f.err
}

func (f *failingVectorStore) Count(_ context.Context) (int, error) { return 0, f.err }
func (f *failingVectorStore) Close() error { return nil }

// failingDocStore fails every write.
type failingDocStore struct{}

func (failingDocStore) SaveDocument(_ context.Context, _ *domain.Document) error {
	return errors.New("disk full")
}

func (failingDocStore) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (failingDocStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return nil, nil
}
