package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

func TestIngestStateStore_LoadMissingFile(t *testing.T) {
	store, err := NewIngestStateStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestStateStore_SaveAndLoad(t *testing.T) {
	store, err := NewIngestStateStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	state := domain.IngestState{
		LastRunAt:        time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
		SourcesSignature: "https://a.example|https://b.example",
		ChunksAdded:      42,
	}
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.LastRunAt.Equal(state.LastRunAt))
	assert.Equal(t, state.SourcesSignature, loaded.SourcesSignature)
	assert.Equal(t, 42, loaded.ChunksAdded)
}

func TestIngestStateStore_SaveOverwrites(t *testing.T) {
	store, err := NewIngestStateStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.IngestState{ChunksAdded: 1}))
	require.NoError(t, store.Save(ctx, domain.IngestState{ChunksAdded: 2}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.ChunksAdded)
}

func TestIngestStateStore_PersistsAcrossInstances(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	first, err := NewIngestStateStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, domain.IngestState{SourcesSignature: "sig", ChunksAdded: 7}))

	second, err := NewIngestStateStore(tmpDir)
	require.NoError(t, err)

	loaded, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sig", loaded.SourcesSignature)
	assert.Equal(t, filepath.Join(tmpDir, "ingest_state.json"), second.Path())
}

func TestIngestStateStore_CorruptFile(t *testing.T) {
	store, err := NewIngestStateStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(store.Path(), []byte("{broken"), 0600))

	_, err = store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode ingest state")
}
