package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

func TestNewSourceStore(t *testing.T) {
	store := NewSourceStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.sources)
}

func TestSourceStore_Save_Update(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Source{ID: "src-1", Name: "Original", URL: "https://a.example"}))
	require.NoError(t, store.Save(ctx, domain.Source{ID: "src-1", Name: "Updated", URL: "https://b.example"}))

	sources, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Updated", sources[0].Name)
	assert.Equal(t, "https://b.example", sources[0].URL)
}

func TestSourceStore_List_OrderedByCrawlOrder(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Source{ID: "c", Name: "Third", Order: 2}))
	require.NoError(t, store.Save(ctx, domain.Source{ID: "a", Name: "First", Order: 0}))
	require.NoError(t, store.Save(ctx, domain.Source{ID: "b", Name: "Second", Order: 1}))

	sources, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, "First", sources[0].Name)
	assert.Equal(t, "Second", sources[1].Name)
	assert.Equal(t, "Third", sources[2].Name)
}

func TestSourceStore_ListActive_FiltersInactive(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Source{ID: "a", Name: "On", Active: true, Order: 1}))
	require.NoError(t, store.Save(ctx, domain.Source{ID: "b", Name: "Off", Active: false, Order: 0}))

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "On", active[0].Name)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSourceStore_Delete(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Source{ID: "src-1", Name: "Test"}))

	err := store.Delete(ctx, "src-1")
	require.NoError(t, err)

	sources, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestSourceStore_Delete_NotFound(t *testing.T) {
	store := NewSourceStore()

	err := store.Delete(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceStore_SetActive(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Source{ID: "src-1", Name: "Test", Active: true}))

	require.NoError(t, store.SetActive(ctx, "src-1", false))

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.ErrorIs(t, store.SetActive(ctx, "missing", true), domain.ErrNotFound)
}

func TestSourceStore_ConcurrentAccess(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Save(ctx, domain.Source{ID: string(rune('a' + n)), Order: n})
			_, _ = store.List(ctx)
		}(i)
	}
	wg.Wait()

	sources, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, 10)
}
