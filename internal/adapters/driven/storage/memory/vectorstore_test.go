package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func record(id string, vec ...float32) driven.VectorRecord {
	return driven.VectorRecord{
		ID:      id,
		Vector:  vec,
		Payload: domain.ChunkPayload{DocumentID: "doc", Text: "text " + id, PageNumber: 1},
	}
}

func TestVectorStore_SearchOrdersByScore(t *testing.T) {
	store := NewVectorStore(2)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{
		record("x", 1, 0),
		record("y", 0, 1),
		record("xy", 1, 1),
	}))

	hits, err := store.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "x", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "xy", hits[1].ID)
	assert.Equal(t, "text x", hits[0].Payload.Text)
}

func TestVectorStore_SearchEmpty(t *testing.T) {
	hits, err := NewVectorStore(3).Search(context.Background(), []float32{1, 2, 3}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorStore_UpsertReplaces(t *testing.T) {
	store := NewVectorStore(2)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{record("a", 1, 0)}))
	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{record("a", 0, 1)}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := store.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestVectorStore_DimensionMismatch(t *testing.T) {
	store := NewVectorStore(2)
	ctx := context.Background()

	err := store.Upsert(ctx, []driven.VectorRecord{record("a", 1, 0), record("b", 1, 0, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	count, _ := store.Count(ctx)
	assert.Zero(t, count, "failed batch stores nothing")

	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{record("a", 1, 0)}))
	_, err = store.Search(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestVectorStore_AdoptsFirstDimensions(t *testing.T) {
	store := NewVectorStore(0)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{record("a", 1, 0, 0)}))
	err := store.Upsert(ctx, []driven.VectorRecord{record("b", 1, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestVectorStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewVectorStore(2)
	assert.ErrorIs(t, store.Upsert(ctx, []driven.VectorRecord{record("a", 1, 0)}), context.Canceled)
	_, err := store.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVectorStore_ConcurrentAccess(t *testing.T) {
	store := NewVectorStore(2)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			_ = store.Upsert(ctx, []driven.VectorRecord{record(fmt.Sprintf("r%d", id), 1, float32(id))})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.Search(ctx, []float32{1, 1}, 3)
		}()
	}
	wg.Wait()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}
