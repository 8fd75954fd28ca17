package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

// Ensure IngestStateStore implements the interface.
var _ driven.IngestStateStore = (*IngestStateStore)(nil)

// stateFileName is the freshness metadata document inside the data
// directory.
const stateFileName = "ingest_state.json"

// IngestStateStore persists the metadata of the last ingestion run as
// a small JSON document next to the knowledge index.
type IngestStateStore struct {
	mu       sync.Mutex
	filePath string
}

// NewIngestStateStore creates a JSON-backed ingest state store.
// If dataDir is empty, defaults to ~/.sitechat.
func NewIngestStateStore(dataDir string) (*IngestStateStore, error) {
	dir, err := resolveDataDir(dataDir)
	if err != nil {
		return nil, err
	}

	return &IngestStateStore{
		filePath: filepath.Join(dir, stateFileName),
	}, nil
}

// Load retrieves the last recorded state. Returns domain.ErrNotFound
// when no run has been recorded yet.
func (s *IngestStateStore) Load(_ context.Context) (*domain.IngestState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read ingest state: %w", err)
	}

	var state domain.IngestState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode ingest state: %w", err)
	}
	return &state, nil
}

// Save overwrites the recorded state.
func (s *IngestStateStore) Save(_ context.Context, state domain.IngestState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode ingest state: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write ingest state: %w", err)
	}
	return nil
}

// Path returns the state file path.
func (s *IngestStateStore) Path() string {
	return s.filePath
}
