package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

func TestIngestStateStore_Load_NotFound(t *testing.T) {
	store := NewIngestStateStore()

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestStateStore_SaveAndLoad(t *testing.T) {
	store := NewIngestStateStore()
	ctx := context.Background()

	state := domain.IngestState{
		LastRunAt:        time.Now(),
		SourcesSignature: "https://a.example|https://b.example",
		ChunksAdded:      42,
	}
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.SourcesSignature, loaded.SourcesSignature)
	assert.Equal(t, 42, loaded.ChunksAdded)
	assert.True(t, state.LastRunAt.Equal(loaded.LastRunAt))
}

func TestIngestStateStore_Save_Overwrites(t *testing.T) {
	store := NewIngestStateStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.IngestState{ChunksAdded: 1}))
	require.NoError(t, store.Save(ctx, domain.IngestState{ChunksAdded: 2}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.ChunksAdded)
}
