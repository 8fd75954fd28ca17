package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettingsStore_Path(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewSettingsStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewSettingsStore_MissingFileLoadsZero(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, Settings{}, store.Settings())

	// A missing file is not created by loading.
	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestSettingsStore_SaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewSettingsStore(tmpDir)
	require.NoError(t, err)

	settings := Settings{
		Embedding:  EmbeddingSettings{Model: "text-embedding-3-large"},
		Completion: CompletionSettings{BaseURL: "https://llm.internal/v1", Model: "gpt-4o", MaxTokens: 1024, Temperature: 0.3},
		Crawl:      CrawlSettings{Endpoint: "https://crawl.internal/extract", PageLimit: 50, RequestsPerSecond: 2},
		Storage:    StorageSettings{Backend: "sqlite"},
		Chunker:    ChunkerSettings{MaxTokens: 300},
		Retrieval:  RetrievalSettings{TopK: 6, CrawledTopK: 20},
		Ingest:     IngestSettings{SourceTimeoutSeconds: 90, Language: "de"},
	}
	require.NoError(t, store.Save(settings))

	reopened, err := NewSettingsStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, settings, reopened.Settings())
}

func TestSettingsStore_HandEditedFile(t *testing.T) {
	tmpDir := t.TempDir()
	raw := `
[storage]
backend = "sqlite"

[retrieval]
top_k = 8

[ingest]
source_timeout_seconds = 45
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(raw), 0600))

	store, err := NewSettingsStore(tmpDir)
	require.NoError(t, err)

	settings := store.Settings()
	assert.Equal(t, "sqlite", settings.Storage.Backend)
	assert.Equal(t, 8, settings.Retrieval.TopK)
	assert.Equal(t, 45, settings.Ingest.SourceTimeoutSeconds)
	assert.Zero(t, settings.Chunker.MaxTokens, "untouched sections stay zero")
}

func TestNewSettingsStore_CorruptFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not [valid toml"), 0600))

	_, err := NewSettingsStore(tmpDir)
	require.Error(t, err)
}

func TestCrawlSettings_IsConfigured(t *testing.T) {
	assert.False(t, CrawlSettings{}.IsConfigured())
	assert.False(t, CrawlSettings{PageLimit: 50}.IsConfigured())
	assert.True(t, CrawlSettings{Endpoint: "https://crawl.internal/extract"}.IsConfigured())
}
