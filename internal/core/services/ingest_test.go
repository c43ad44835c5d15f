package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

type ingestFixture struct {
	svc       *IngestService
	extractor *mockExtractor
	embedder  *mockEmbeddingService
	vectors   *memory.VectorStore
	docs      *memory.DocumentStore
}

func newIngestFixture(t *testing.T, cfg domain.IngestionSettings) *ingestFixture {
	t.Helper()

	pipeline, err := postprocessors.NewIngestPipeline(domain.ChunkingSettings{Size: 20, Overlap: 5})
	require.NoError(t, err)

	f := &ingestFixture{
		extractor: &mockExtractor{
			extractions: map[string]*domain.Extraction{},
			errs:        map[string]error{},
		},
		embedder: &mockEmbeddingService{},
		vectors:  memory.NewVectorStore(0),
		docs:     memory.NewDocumentStore(),
	}
	f.svc, err = NewIngestService(f.extractor, pipeline, f.embedder, f.vectors, f.docs, cfg)
	require.NoError(t, err)
	return f
}

func defaultIngestion() domain.IngestionSettings {
	return domain.IngestionSettings{Workers: 2, EmbedBatchSize: 100}
}

func upload(name string) domain.FileUpload {
	return domain.FileUpload{Filename: name, Content: []byte("%PDF-1.4")}
}

func TestNewIngestService_InvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		cfg   domain.IngestionSettings
		field string
	}{
		{"zero workers", domain.IngestionSettings{Workers: 0, EmbedBatchSize: 10}, "ingestion.workers"},
		{"zero batch", domain.IngestionSettings{Workers: 1, EmbedBatchSize: 0}, "ingestion.embed_batch_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIngestService(nil, nil, nil, nil, nil, tt.cfg)

			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestIngestService_Ingest_IndexesDocument(t *testing.T) {
	f := newIngestFixture(t, defaultIngestion())
	f.extractor.extractions["report.pdf"] = &domain.Extraction{
		Metadata: domain.DocumentMetadata{Title: "Annual Report", Author: "Jane"},
		Pages: []domain.Page{
			{Number: 1, Text: "The quick brown fox jumps over the lazy dog."},
			{Number: 2, Text: "Short page."},
		},
	}
	ctx := context.Background()

	result, err := f.svc.Ingest(ctx, []domain.FileUpload{upload("report.pdf")})

	require.NoError(t, err)
	require.Len(t, result.DocumentIDs, 1)
	assert.Empty(t, result.Failures)
	assert.Equal(t, "Successfully processed 1 documents", result.Message)

	doc, err := f.docs.GetDocument(ctx, result.DocumentIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Annual Report", doc.Metadata.Title)
	assert.Equal(t, "Jane", doc.Metadata.Author)
	assert.Equal(t, 2, doc.Metadata.PageCount)
	assert.Greater(t, doc.ChunkCount, 2)

	count, err := f.vectors.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc.ChunkCount, count)

	hits, err := f.vectors.Search(ctx, []float32{1, 0, 0}, count)
	require.NoError(t, err)
	pages := map[int]bool{}
	for _, hit := range hits {
		assert.Equal(t, doc.ID, hit.Payload.DocumentID)
		assert.Equal(t, "Annual Report", hit.Payload.Title)
		assert.LessOrEqual(t, len([]rune(hit.Payload.Text)), 20)
		pages[hit.Payload.PageNumber] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true}, pages)
}

func TestIngestService_Ingest_DefaultsMetadataFromFilename(t *testing.T) {
	f := newIngestFixture(t, defaultIngestion())
	f.extractor.extractions["notes.pdf"] = &domain.Extraction{
		Pages: []domain.Page{{Number: 1, Text: "Some notes."}},
	}
	ctx := context.Background()

	result, err := f.svc.Ingest(ctx, []domain.FileUpload{upload("notes.pdf")})
	require.NoError(t, err)
	require.Len(t, result.DocumentIDs, 1)

	doc, err := f.docs.GetDocument(ctx, result.DocumentIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", doc.Metadata.Title)
	assert.Equal(t, domain.DefaultAuthor, doc.Metadata.Author)
}

func TestIngestService_Ingest_SameFileTwiceIsNotDeduplicated(t *testing.T) {
	f := newIngestFixture(t, defaultIngestion())
	f.extractor.extractions["same.pdf"] = &domain.Extraction{
		Pages: []domain.Page{{Number: 1, Text: "Identical bytes produce separate documents."}},
	}
	ctx := context.Background()

	first, err := f.svc.Ingest(ctx, []domain.FileUpload{upload("same.pdf")})
	require.NoError(t, err)
	second, err := f.svc.Ingest(ctx, []domain.FileUpload{upload("same.pdf")})
	require.NoError(t, err)

	require.Len(t, first.DocumentIDs, 1)
	require.Len(t, second.DocumentIDs, 1)
	assert.NotEqual(t, first.DocumentIDs[0], second.DocumentIDs[0])

	count, err := f.vectors.Count(ctx)
	require.NoError(t, err)
	hits, err := f.vectors.Search(ctx, []float32{1, 0, 0}, count)
	require.NoError(t, err)
	require.Len(t, hits, count)

	chunksByDoc := map[string]map[string]bool{}
	for _, hit := range hits {
		if chunksByDoc[hit.Payload.DocumentID] == nil {
			chunksByDoc[hit.Payload.DocumentID] = map[string]bool{}
		}
		chunksByDoc[hit.Payload.DocumentID][hit.ID] = true
	}
	require.Len(t, chunksByDoc, 2)
	a, b := chunksByDoc[first.DocumentIDs[0]], chunksByDoc[second.DocumentIDs[0]]
	assert.Len(t, b, len(a))
	for id := range a {
		assert.False(t, b[id], "chunk %s shared by both documents", id)
	}
}

func TestIngestService_Ingest_FailingFileDoesNotAffectOthers(t *testing.T) {
	f := newIngestFixture(t, defaultIngestion())
	f.extractor.extractions["good.pdf"] = &domain.Extraction{
		Pages: []domain.Page{{Number: 1, Text: "Readable content."}},
	}
	f.extractor.errs["bad.pdf"] = domain.ErrUnsupportedFormat

	result, err := f.svc.Ingest(context.Background(), []domain.FileUpload{upload("bad.pdf"), upload("good.pdf")})

	require.NoError(t, err)
	assert.Len(t, result.DocumentIDs, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "bad.pdf", result.Failures[0].Filename)
	assert.Contains(t, result.Failures[0].Reason, "unsupported document format")
	assert.Contains(t, result.Message, "1 failed")
	assert.Contains(t, result.Message, "bad.pdf")

	f.embedder.query = []float32{1, 0, 0}
	retrieval, err := NewRetrievalService(f.embedder, f.vectors, domain.RetrievalSettings{TopK: 5})
	require.NoError(t, err)
	hits, err := retrieval.Retrieve(context.Background(), domain.Query{Text: "content"})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, hit := range hits {
		assert.Equal(t, result.DocumentIDs[0], hit.Payload.DocumentID)
		assert.Equal(t, "good.pdf", hit.Payload.Title)
	}
}

func TestIngestService_Ingest_PreservesUploadOrder(t *testing.T) {
	f := newIngestFixture(t, domain.IngestionSettings{Workers: 4, EmbedBatchSize: 100})
	var files []domain.FileUpload
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"} {
		f.extractor.extractions[name] = &domain.Extraction{
			Pages: []domain.Page{{Number: 1, Text: "Content of " + name}},
		}
		files = append(files, upload(name))
	}
	ctx := context.Background()

	result, err := f.svc.Ingest(ctx, files)
	require.NoError(t, err)
	require.Len(t, result.DocumentIDs, 4)

	for i, id := range result.DocumentIDs {
		doc, err := f.docs.GetDocument(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, files[i].Filename, doc.Filename)
	}
}

func TestIngestService_Ingest_EmbeddingFailureIndexesNothing(t *testing.T) {
	f := newIngestFixture(t, defaultIngestion())
	f.embedder.err = domain.ErrRateLimited
	f.extractor.extractions["doc.pdf"] = &domain.Extraction{
		Pages: []domain.Page{{Number: 1, Text: strings.Repeat("word ", 20)}},
	}
	ctx := context.Background()

	result, err := f.svc.Ingest(ctx, []domain.FileUpload{upload("doc.pdf")})

	require.NoError(t, err)
	assert.Empty(t, result.DocumentIDs)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Reason, "embed")

	count, err := f.vectors.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	docs, err := f.docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngestService_Ingest_EmbeddingCountMismatch(t *testing.T) {
	f := newIngestFixture(t, defaultIngestion())
	f.embedder.short = true
	f.extractor.extractions["doc.pdf"] = &domain.Extraction{
		Pages: []domain.Page{{Number: 1, Text: "One page of text."}},
	}

	result, err := f.svc.Ingest(context.Background(), []domain.FileUpload{upload("doc.pdf")})

	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Reason, domain.ErrEmbeddingService.Error())
}

func TestIngestService_Ingest_EmptyEmbeddingFailsDocument(t *testing.T) {
	f := newIngestFixture(t, defaultIngestion())
	f.embedder.blank = true
	f.extractor.extractions["doc.pdf"] = &domain.Extraction{
		Pages: []domain.Page{{Number: 1, Text: "Some text to embed."}},
	}

	result, err := f.svc.Ingest(context.Background(), []domain.FileUpload{upload("doc.pdf")})

	require.NoError(t, err)
	assert.Empty(t, result.DocumentIDs)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Reason, "empty embedding")
	count, _ := f.vectors.Count(context.Background())
	assert.Zero(t, count)
}

func TestIngestService_Ingest_BatchesEmbeddings(t *testing.T) {
	f := newIngestFixture(t, domain.IngestionSettings{Workers: 1, EmbedBatchSize: 2})
	var pages []domain.Page
	for i := 1; i <= 5; i++ {
		pages = append(pages, domain.Page{Number: i, Text: "page text"})
	}
	f.extractor.extractions["doc.pdf"] = &domain.Extraction{Pages: pages}

	result, err := f.svc.Ingest(context.Background(), []domain.FileUpload{upload("doc.pdf")})

	require.NoError(t, err)
	require.Len(t, result.DocumentIDs, 1)
	assert.Equal(t, []int{2, 2, 1}, f.embedder.batches())
}

func TestIngestService_Ingest_NoTextSucceedsWithoutIndexing(t *testing.T) {
	f := newIngestFixture(t, defaultIngestion())
	f.extractor.extractions["scan.pdf"] = &domain.Extraction{
		Pages: []domain.Page{{Number: 1, Text: ""}, {Number: 2, Text: ""}},
	}
	ctx := context.Background()

	result, err := f.svc.Ingest(ctx, []domain.FileUpload{upload("scan.pdf")})

	require.NoError(t, err)
	require.Len(t, result.DocumentIDs, 1)
	assert.Empty(t, f.embedder.batches())

	doc, err := f.docs.GetDocument(ctx, result.DocumentIDs[0])
	require.NoError(t, err)
	assert.Zero(t, doc.ChunkCount)
	assert.Equal(t, 2, doc.Metadata.PageCount)
}

func TestIngestService_Ingest_IndexFailure(t *testing.T) {
	pipeline, err := postprocessors.NewIngestPipeline(domain.ChunkingSettings{Size: 50, Overlap: 10})
	require.NoError(t, err)
	extractor := &mockExtractor{extractions: map[string]*domain.Extraction{
		"doc.pdf": {Pages: []domain.Page{{Number: 1, Text: "content"}}},
	}}
	var vectors driven.VectorStore = &failingVectorStore{err: domain.ErrDimensionMismatch}
	svc, err := NewIngestService(extractor, pipeline, &mockEmbeddingService{}, vectors, nil, defaultIngestion())
	require.NoError(t, err)

	result, err := svc.Ingest(context.Background(), []domain.FileUpload{upload("doc.pdf")})

	require.NoError(t, err)
	assert.Empty(t, result.DocumentIDs)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Reason, "index")
	assert.Contains(t, result.Failures[0].Reason, domain.ErrDimensionMismatch.Error())
}

func TestIngestService_Ingest_CatalogueFailureStillSucceeds(t *testing.T) {
	pipeline, err := postprocessors.NewIngestPipeline(domain.ChunkingSettings{Size: 50, Overlap: 10})
	require.NoError(t, err)
	extractor := &mockExtractor{extractions: map[string]*domain.Extraction{
		"doc.pdf": {Pages: []domain.Page{{Number: 1, Text: "content"}}},
	}}
	vectors := memory.NewVectorStore(0)
	svc, err := NewIngestService(extractor, pipeline, &mockEmbeddingService{}, vectors, failingDocStore{}, defaultIngestion())
	require.NoError(t, err)

	result, err := svc.Ingest(context.Background(), []domain.FileUpload{upload("doc.pdf")})

	require.NoError(t, err)
	assert.Len(t, result.DocumentIDs, 1)
	count, _ := vectors.Count(context.Background())
	assert.Equal(t, 1, count)
}

func TestIngestService_Ingest_CancelledContext(t *testing.T) {
	f := newIngestFixture(t, defaultIngestion())
	f.extractor.extractions["doc.pdf"] = &domain.Extraction{
		Pages: []domain.Page{{Number: 1, Text: "content"}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.svc.Ingest(ctx, []domain.FileUpload{upload("doc.pdf")})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.DocumentIDs)
	assert.Len(t, result.Failures, 1)
}

func TestIngestService_Ingest_NoFiles(t *testing.T) {
	f := newIngestFixture(t, defaultIngestion())

	result, err := f.svc.Ingest(context.Background(), nil)

	require.NoError(t, err)
	assert.NotNil(t, result.DocumentIDs)
	assert.Empty(t, result.DocumentIDs)
	assert.Equal(t, "Successfully processed 0 documents", result.Message)
}

// gatedExtractor blocks every call until release is closed and records the
// highest number of calls in flight at once.
type gatedExtractor struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	entered  chan struct{}
	release  chan struct{}
}

func newGatedExtractor(files int) *gatedExtractor {
	return &gatedExtractor{
		entered: make(chan struct{}, files),
		release: make(chan struct{}),
	}
}

func (g *gatedExtractor) Extract(_ context.Context, _ string, _ []byte) (*domain.Extraction, error) {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	g.entered <- struct{}{}
	<-g.release
	return &domain.Extraction{Pages: []domain.Page{{Number: 1, Text: "gated"}}}, nil
}

func TestIngestService_Ingest_RespectsWorkerLimit(t *testing.T) {
	const files = 6
	pipeline, err := postprocessors.NewIngestPipeline(domain.ChunkingSettings{Size: 20, Overlap: 5})
	require.NoError(t, err)
	extractor := newGatedExtractor(files)
	cfg := domain.IngestionSettings{Workers: 2, EmbedBatchSize: 10}
	svc, err := NewIngestService(extractor, pipeline, &mockEmbeddingService{},
		memory.NewVectorStore(0), memory.NewDocumentStore(), cfg)
	require.NoError(t, err)

	uploads := make([]domain.FileUpload, files)
	for i := range uploads {
		uploads[i] = upload(fmt.Sprintf("file-%d.pdf", i))
	}

	done := make(chan domain.IngestResult, 1)
	go func() {
		result, _ := svc.Ingest(context.Background(), uploads)
		done <- result
	}()

	for range cfg.Workers {
		select {
		case <-extractor.entered:
		case <-time.After(2 * time.Second):
			t.Fatal("workers did not start")
		}
	}
	select {
	case <-extractor.entered:
		t.Fatal("more files started than workers allow")
	case <-time.After(50 * time.Millisecond):
	}
	close(extractor.release)

	select {
	case result := <-done:
		assert.Len(t, result.DocumentIDs, files)
		assert.Empty(t, result.Failures)
	case <-time.After(5 * time.Second):
		t.Fatal("ingest did not finish")
	}
	assert.Equal(t, int32(cfg.Workers), extractor.peak.Load())
}
