package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs extraction, chunking, metadata attachment, embedding and
// indexing for uploaded files. Files are processed concurrently on a bounded
// worker pool; each document is indexed in a single upsert or not at all.
type IngestService struct {
	extractor driven.Extractor
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	vectors   driven.VectorStore
	docStore  driven.DocumentStore
	cfg       domain.IngestionSettings

	newID func() string
	now   func() time.Time
}

// NewIngestService creates a new ingestion service.
// The docStore parameter is optional (can be nil); without it documents are
// indexed but not listed in the catalogue.
func NewIngestService(
	extractor driven.Extractor,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	docStore driven.DocumentStore,
	cfg domain.IngestionSettings,
) (*IngestService, error) {
	if cfg.Workers <= 0 {
		return nil, domain.NewConfigurationError("ingestion.workers", "must be positive, got %d", cfg.Workers)
	}
	if cfg.EmbedBatchSize <= 0 {
		return nil, domain.NewConfigurationError("ingestion.embed_batch_size",
			"must be positive, got %d", cfg.EmbedBatchSize)
	}

	return &IngestService{
		extractor: extractor,
		pipeline:  pipeline,
		embedder:  embedder,
		vectors:   vectors,
		docStore:  docStore,
		cfg:       cfg,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
	}, nil
}

// ingestOutcome is the result of ingesting one file.
type ingestOutcome struct {
	filename   string
	documentID string
	err        error
}

// Ingest indexes each file independently. A failing file is reported in the
// result and does not affect the others.
func (s *IngestService) Ingest(ctx context.Context, files []domain.FileUpload) (domain.IngestResult, error) {
	logger.Section("Ingest")
	logger.Debug("Files: %d, workers: %d, embed batch: %d", len(files), s.cfg.Workers, s.cfg.EmbedBatchSize)

	outcomes := make([]ingestOutcome, len(files))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, file := range files {
		g.Go(func() error {
			docID, err := s.ingestFile(ctx, file)
			outcomes[i] = ingestOutcome{filename: file.Filename, documentID: docID, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := summarise(outcomes)
	logger.Info("%s", result.Message)

	return result, ctx.Err()
}

// ingestFile runs the full pipeline for one file and returns its document ID.
func (s *IngestService) ingestFile(ctx context.Context, file domain.FileUpload) (string, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc := &domain.Document{
		ID:        s.newID(),
		Filename:  file.Filename,
		CreatedAt: s.now(),
	}

	extraction, err := s.extractor.Extract(ctx, file.Filename, file.Content)
	if err != nil {
		logger.Warn("extract %s: %v", file.Filename, err)
		return "", fmt.Errorf("extract: %w", err)
	}
	doc.Metadata = extraction.Metadata.WithDefaults(file.Filename)
	if doc.Metadata.PageCount == 0 {
		doc.Metadata.PageCount = len(extraction.Pages)
	}
	doc.Pages = extraction.Pages

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("chunk: %w", err)
	}
	logger.Debug("%s: document %s, %d pages, %d chunks", file.Filename, doc.ID, len(doc.Pages), len(chunks))

	if len(chunks) > 0 {
		if err := s.embedChunks(ctx, chunks); err != nil {
			logger.Warn("embed %s: %v", file.Filename, err)
			return "", fmt.Errorf("embed: %w", err)
		}

		records := make([]driven.VectorRecord, len(chunks))
		for i, chunk := range chunks {
			records[i] = driven.VectorRecord{ID: chunk.ID, Vector: chunk.Embedding, Payload: chunk.Payload()}
		}
		if err := s.vectors.Upsert(ctx, records); err != nil {
			logger.Warn("index %s: %v", file.Filename, err)
			return "", fmt.Errorf("index: %w", err)
		}
	} else {
		logger.Debug("%s: no text extracted, nothing to index", file.Filename)
	}

	doc.ChunkCount = len(chunks)
	doc.Pages = nil

	// The document is fully indexed at this point; a catalogue failure only
	// hides it from listings.
	if s.docStore != nil {
		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			logger.Warn("save document %s to catalogue: %v", doc.ID, err)
		}
	}

	return doc.ID, nil
}

// embedChunks fills in chunk embeddings, at most EmbedBatchSize texts per request.
// Any failed batch fails the whole document.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += s.cfg.EmbedBatchSize {
		end := min(start+s.cfg.EmbedBatchSize, len(chunks))

		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = chunks[i].Text
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("batch %d-%d: got %d embeddings for %d texts: %w",
				start, end, len(vectors), len(texts), domain.ErrEmbeddingService)
		}

		for i, vec := range vectors {
			chunks[start+i].Embedding = vec
			if !chunks[start+i].Indexed() {
				return fmt.Errorf("batch %d-%d: empty embedding at %d: %w", start, end, i, domain.ErrEmbeddingService)
			}
		}
	}
	return nil
}

// summarise builds the ingestion result in upload order.
func summarise(outcomes []ingestOutcome) domain.IngestResult {
	result := domain.IngestResult{DocumentIDs: []string{}}

	var failed []string
	for _, o := range outcomes {
		if o.err != nil {
			result.Failures = append(result.Failures, domain.IngestFailure{Filename: o.filename, Reason: o.err.Error()})
			failed = append(failed, fmt.Sprintf("%s (%v)", o.filename, o.err))
			continue
		}
		result.DocumentIDs = append(result.DocumentIDs, o.documentID)
	}

	if len(failed) == 0 {
		result.Message = fmt.Sprintf("Successfully processed %d documents", len(result.DocumentIDs))
		return result
	}

	result.Message = fmt.Sprintf("Processed %d of %d documents; %d failed: %s",
		len(result.DocumentIDs), len(outcomes), len(failed), strings.Join(failed, "; "))
	return result
}
