package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestDocumentService_List(t *testing.T) {
	docStore := memory.NewDocumentStore()
	svc := NewDocumentService(docStore)
	ctx := context.Background()

	now := time.Now()
	_ = docStore.SaveDocument(ctx, &domain.Document{ID: "old", Filename: "old.pdf", CreatedAt: now.Add(-time.Hour)})
	_ = docStore.SaveDocument(ctx, &domain.Document{ID: "new", Filename: "new.pdf", CreatedAt: now})

	docs, err := svc.List(ctx)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "old", docs[1].ID)
}

func TestDocumentService_Get(t *testing.T) {
	docStore := memory.NewDocumentStore()
	svc := NewDocumentService(docStore)
	ctx := context.Background()

	_ = docStore.SaveDocument(ctx, &domain.Document{
		ID:       "doc-1",
		Filename: "paper.pdf",
		Metadata: domain.DocumentMetadata{Title: "Paper", Author: "Ada", PageCount: 3},
	})

	doc, err := svc.Get(ctx, " doc-1 ")
	require.NoError(t, err)
	assert.Equal(t, "Paper", doc.Metadata.Title)
	assert.Equal(t, 3, doc.Metadata.PageCount)
}

func TestDocumentService_Get_NotFound(t *testing.T) {
	svc := NewDocumentService(memory.NewDocumentStore())

	_, err := svc.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Get_EmptyID(t *testing.T) {
	svc := NewDocumentService(memory.NewDocumentStore())

	_, err := svc.Get(context.Background(), "  ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_NilDocStore(t *testing.T) {
	svc := NewDocumentService(nil)
	ctx := context.Background()

	docs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	_, err = svc.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type failingCatalogue struct {
	memory.DocumentStore
	err error
}

func (f *failingCatalogue) ListDocuments(context.Context) ([]domain.Document, error) {
	return nil, f.err
}

func TestDocumentService_List_WrapsStoreError(t *testing.T) {
	svc := NewDocumentService(&failingCatalogue{err: domain.ErrStoreUnavailable})

	docs, err := svc.List(context.Background())

	assert.Nil(t, docs)
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "list documents")
}
