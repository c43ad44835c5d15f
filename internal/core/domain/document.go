package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Metadata defaults.
const (
	// DefaultAuthor is used when a document carries no author metadata.
	DefaultAuthor = "Unknown"

	// DefaultTitle is used when neither metadata nor filename give a title.
	DefaultTitle = "Untitled"
)

// DocumentMetadata holds the document-level fields propagated to every chunk.
type DocumentMetadata struct {
	// Title is the document title. Defaults to the uploaded filename.
	Title string `json:"title"`

	// Author is the document author. Defaults to DefaultAuthor.
	Author string `json:"author"`

	// PageCount is the number of pages reported by the extractor.
	PageCount int `json:"page_count"`
}

// WithDefaults returns a copy with blank fields replaced by their defaults.
func (m DocumentMetadata) WithDefaults(filename string) DocumentMetadata {
	m.Title = strings.TrimSpace(m.Title)
	m.Author = strings.TrimSpace(m.Author)
	if m.Title == "" {
		m.Title = filepath.Base(filename)
	}
	if m.Title == "" || m.Title == "." {
		m.Title = DefaultTitle
	}
	if m.Author == "" {
		m.Author = DefaultAuthor
	}
	return m
}

// Page is the raw text of a single page.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted plain text of the page.
	Text string
}

// Extraction is the output of the extraction capability.
type Extraction struct {
	Metadata DocumentMetadata
	Pages    []Page
}

// Document represents an uploaded PDF.
// It is created once at ingestion time and never mutated afterwards.
type Document struct {
	// ID is the opaque identifier generated at ingestion time.
	ID string `json:"document_id"`

	// Filename is the name the file was uploaded under.
	Filename string `json:"filename"`

	// Metadata holds title, author and page count.
	Metadata DocumentMetadata `json:"metadata"`

	// Pages holds the extracted page texts. Only populated during ingestion.
	Pages []Page `json:"-"`

	// ChunkCount is the number of chunks indexed for the document.
	ChunkCount int `json:"chunk_count"`

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"created_at"`
}

// Chunk is a bounded substring of one page of a document.
type Chunk struct {
	// ID is the globally unique chunk identifier.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Text is a contiguous substring of the page.
	Text string

	// PageNumber is the page the chunk starts on.
	PageNumber int

	// StartOffset and EndOffset are character offsets within the page, end exclusive.
	StartOffset int
	EndOffset   int

	// Title and Author are copied from the document metadata.
	Title  string
	Author string

	// Embedding is the vector representation. Nil until the chunk is embedded.
	Embedding []float32
}

// Indexed reports whether the chunk carries an embedding.
func (c Chunk) Indexed() bool {
	return len(c.Embedding) > 0
}

// Payload returns the metadata stored alongside the chunk vector.
func (c Chunk) Payload() ChunkPayload {
	return ChunkPayload{
		DocumentID: c.DocumentID,
		Title:      c.Title,
		Author:     c.Author,
		PageNumber: c.PageNumber,
		Text:       c.Text,
	}
}

// ChunkPayload is the metadata attached to each vector in the store.
type ChunkPayload struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}
