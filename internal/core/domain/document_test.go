package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentMetadata_WithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		meta     DocumentMetadata
		filename string
		want     DocumentMetadata
	}{
		{
			name:     "keeps provided values",
			meta:     DocumentMetadata{Title: "Annual Report", Author: "Jane Doe", PageCount: 3},
			filename: "report.pdf",
			want:     DocumentMetadata{Title: "Annual Report", Author: "Jane Doe", PageCount: 3},
		},
		{
			name:     "title falls back to filename",
			meta:     DocumentMetadata{Author: "Jane Doe"},
			filename: "/tmp/uploads/report.pdf",
			want:     DocumentMetadata{Title: "report.pdf", Author: "Jane Doe"},
		},
		{
			name:     "author falls back to Unknown",
			meta:     DocumentMetadata{Title: "Annual Report"},
			filename: "report.pdf",
			want:     DocumentMetadata{Title: "Annual Report", Author: DefaultAuthor},
		},
		{
			name:     "whitespace counts as blank",
			meta:     DocumentMetadata{Title: "  ", Author: "\t"},
			filename: "notes.pdf",
			want:     DocumentMetadata{Title: "notes.pdf", Author: DefaultAuthor},
		},
		{
			name: "no filename uses Untitled",
			meta: DocumentMetadata{},
			want: DocumentMetadata{Title: DefaultTitle, Author: DefaultAuthor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.WithDefaults(tt.filename))
		})
	}
}

func TestChunk_Indexed(t *testing.T) {
	assert.False(t, Chunk{ID: "c1"}.Indexed())
	assert.False(t, Chunk{ID: "c1", Embedding: []float32{}}.Indexed())
	assert.True(t, Chunk{ID: "c1", Embedding: []float32{0.1}}.Indexed())
}

func TestChunk_Payload(t *testing.T) {
	chunk := Chunk{
		ID:          "chunk-1",
		DocumentID:  "doc-1",
		Text:        "hello world",
		PageNumber:  2,
		StartOffset: 600,
		EndOffset:   1350,
		Title:       "Guide",
		Author:      "Ann",
	}

	assert.Equal(t, ChunkPayload{
		DocumentID: "doc-1",
		Title:      "Guide",
		Author:     "Ann",
		PageNumber: 2,
		Text:       "hello world",
	}, chunk.Payload())
}
