// Package chunker splits page text into overlapping fixed-size character windows.
package chunker

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits each page of a document into fixed-size chunks.
// Windows advance by chunkSize-overlap characters and ignore word boundaries,
// so consecutive chunks of a page share exactly overlap characters.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker. It fails with a *domain.ConfigurationError unless
// chunkSize > 0 and 0 <= overlap < chunkSize.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.Settings().Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Split chunks a single page of text with the given window parameters.
func Split(text string, pageNumber, chunkSize, overlap int) ([]domain.Chunk, error) {
	p, err := New(WithChunkSize(chunkSize), WithOverlap(overlap))
	if err != nil {
		return nil, err
	}
	return p.ChunkPage(domain.Page{Number: pageNumber, Text: text}), nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Settings returns the window parameters.
func (p *Processor) Settings() domain.ChunkingSettings {
	return domain.ChunkingSettings{Size: p.chunkSize, Overlap: p.overlap}
}

// ChunkPage splits one page. Offsets count characters (runes), not bytes.
// Empty text yields no chunks; text shorter than the chunk size yields one.
func (p *Processor) ChunkPage(page domain.Page) []domain.Chunk {
	runes := []rune(page.Text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	stride := p.chunkSize - p.overlap
	chunks := make([]domain.Chunk, 0, (n+stride-1)/stride)

	for start := 0; ; start += stride {
		end := min(start+p.chunkSize, n)

		chunks = append(chunks, domain.Chunk{
			Text:        string(runes[start:end]),
			PageNumber:  page.Number,
			StartOffset: start,
			EndOffset:   end,
		})

		if end == n {
			break
		}
	}

	return chunks
}

// Process chunks every page of the document in page order.
// Input chunks are ignored; this processor creates new chunks from the pages.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks = append(chunks, p.ChunkPage(page)...)
	}

	return chunks, nil
}
