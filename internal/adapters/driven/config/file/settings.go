package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Settings is the application configuration persisted as TOML. Zero
// values mean "use the built-in default" and are resolved at wiring
// time. Secrets never live here: API keys come from the environment.
type Settings struct {
	Embedding  EmbeddingSettings  `toml:"embedding"`
	Completion CompletionSettings `toml:"completion"`
	Crawl      CrawlSettings      `toml:"crawl"`
	Storage    StorageSettings    `toml:"storage"`
	Chunker    ChunkerSettings    `toml:"chunker"`
	Retrieval  RetrievalSettings  `toml:"retrieval"`
	Ingest     IngestSettings     `toml:"ingest"`
}

// EmbeddingSettings configure the embedding provider client.
type EmbeddingSettings struct {
	// BaseURL overrides the OpenAI-compatible API base URL.
	BaseURL string `toml:"base_url,omitempty"`

	// Model is the embedding model name.
	Model string `toml:"model,omitempty"`
}

// CompletionSettings configure the chat completion client.
type CompletionSettings struct {
	// BaseURL overrides the OpenAI-compatible API base URL.
	BaseURL string `toml:"base_url,omitempty"`

	// Model is the chat model name.
	Model string `toml:"model,omitempty"`

	// MaxTokens caps answer length. Zero keeps the provider default.
	MaxTokens int `toml:"max_tokens,omitempty"`

	// Temperature sets sampling randomness. Zero keeps the provider
	// default.
	Temperature float64 `toml:"temperature,omitempty"`
}

// CrawlSettings configure the crawl provider client.
type CrawlSettings struct {
	// Endpoint is the provider URL page requests are posted to.
	Endpoint string `toml:"endpoint,omitempty"`

	// PageLimit caps pages per source.
	PageLimit int `toml:"page_limit,omitempty"`

	// RequestsPerSecond paces provider calls.
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty"`
}

// IsConfigured returns true if the crawl provider is set up. The API
// key is read from the environment at wiring time, not from here.
func (c CrawlSettings) IsConfigured() bool {
	return c.Endpoint != ""
}

// StorageSettings select the knowledge store backend.
type StorageSettings struct {
	// Backend is "file" (default) or "sqlite".
	Backend string `toml:"backend,omitempty"`
}

// ChunkerSettings tune passage splitting.
type ChunkerSettings struct {
	// MaxTokens is the estimated token budget per chunk.
	MaxTokens int `toml:"max_tokens,omitempty"`
}

// RetrievalSettings override the retrieval result counts.
type RetrievalSettings struct {
	// TopK is the general retrieval result count.
	TopK int `toml:"top_k,omitempty"`

	// CrawledTopK is the crawled-only retrieval result count.
	CrawledTopK int `toml:"crawled_top_k,omitempty"`
}

// IngestSettings tune the ingestion run.
type IngestSettings struct {
	// SourceTimeoutSeconds bounds the work spent on one source.
	SourceTimeoutSeconds int `toml:"source_timeout_seconds,omitempty"`

	// Language stamps ingested documents (default "en").
	Language string `toml:"language,omitempty"`
}

// settingsFileName is the settings document inside the config directory.
const settingsFileName = "config.toml"

// SettingsStore persists Settings as a TOML file.
type SettingsStore struct {
	mu       sync.RWMutex
	filePath string
	settings Settings
}

// NewSettingsStore creates a TOML-based settings store.
// If configDir is empty, defaults to ~/.sitechat/config.toml. A missing
// file loads as zero Settings; nothing is written until Save.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".sitechat")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &SettingsStore{
		filePath: filepath.Join(configDir, settingsFileName),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Settings returns the current settings.
func (s *SettingsStore) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Save replaces the settings and persists them.
func (s *SettingsStore) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}

	// Write with restricted permissions
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return err
	}

	s.settings = settings
	return nil
}

// Load reads the settings from the TOML file. A missing file resets to
// zero Settings.
func (s *SettingsStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.settings = Settings{}
			return nil
		}
		return err
	}

	var loaded Settings
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}

	s.settings = loaded
	return nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}
