package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

func newTestSourceStore(t *testing.T) *SourceStore {
	t.Helper()
	store, err := NewSourceStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func testSource(id, name string, order int, active bool) domain.Source {
	return domain.Source{
		ID:     id,
		Name:   name,
		URL:    "https://" + id + ".example",
		Active: active,
		Order:  order,
	}
}

func TestSourceStore_ListActive_MissingFile(t *testing.T) {
	store := newTestSourceStore(t)

	sources, err := store.ListActive(context.Background())

	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestSourceStore_SaveAndList(t *testing.T) {
	store := newTestSourceStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSource("b", "Blog", 1, true)))
	require.NoError(t, store.Save(ctx, testSource("a", "Docs", 0, true)))

	sources, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "Docs", sources[0].Name)
	assert.Equal(t, "Blog", sources[1].Name)
}

func TestSourceStore_SaveUpdatesExisting(t *testing.T) {
	store := newTestSourceStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSource("a", "Docs", 0, true)))

	updated := testSource("a", "Documentation", 0, true)
	require.NoError(t, store.Save(ctx, updated))

	sources, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Documentation", sources[0].Name)
}

func TestSourceStore_ListActiveFiltersAndSorts(t *testing.T) {
	store := newTestSourceStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSource("c", "Third", 2, true)))
	require.NoError(t, store.Save(ctx, testSource("b", "Paused", 1, false)))
	require.NoError(t, store.Save(ctx, testSource("a", "First", 0, true)))

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "First", active[0].Name)
	assert.Equal(t, "Third", active[1].Name)
}

func TestSourceStore_Delete(t *testing.T) {
	store := newTestSourceStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSource("a", "Docs", 0, true)))
	require.NoError(t, store.Delete(ctx, "a"))

	sources, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestSourceStore_Delete_NotFound(t *testing.T) {
	store := newTestSourceStore(t)

	err := store.Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceStore_SetActive(t *testing.T) {
	store := newTestSourceStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSource("a", "Docs", 0, true)))
	require.NoError(t, store.SetActive(ctx, "a", false))

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Active)
}

func TestSourceStore_SetActive_NotFound(t *testing.T) {
	store := newTestSourceStore(t)

	err := store.SetActive(context.Background(), "missing", true)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceStore_HandEditedFile(t *testing.T) {
	tmpDir := t.TempDir()
	raw := `
[[sources]]
id = "docs"
name = "Docs"
url = "https://docs.example"
active = true
order = 0

[[sources]]
id = "blog"
name = "Blog"
url = "https://blog.example"
active = false
order = 1
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "sources.toml"), []byte(raw), 0600))

	store, err := NewSourceStore(tmpDir)
	require.NoError(t, err)

	all, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "https://docs.example", all[0].URL)

	active, err := store.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "docs", active[0].ID)
}

func TestSourceStore_ListActive_ToleratesCorruptFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "sources.toml"), []byte("[[broken"), 0600))

	store, err := NewSourceStore(tmpDir)
	require.NoError(t, err)

	// Ingestion must see an empty directory, not crash.
	active, err := store.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)

	// Management commands surface the problem instead.
	_, err = store.List(context.Background())
	require.Error(t, err)
}
