package memory

import (
	"context"
	"sync"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

// Ensure IngestStateStore implements the interface.
var _ driven.IngestStateStore = (*IngestStateStore)(nil)

// IngestStateStore is an in-memory implementation of driven.IngestStateStore.
type IngestStateStore struct {
	mu    sync.RWMutex
	state *domain.IngestState
}

// NewIngestStateStore creates a new in-memory ingest state store.
func NewIngestStateStore() *IngestStateStore {
	return &IngestStateStore{}
}

// Load retrieves the last recorded state.
func (s *IngestStateStore) Load(_ context.Context) (*domain.IngestState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, domain.ErrNotFound
	}
	state := *s.state
	return &state, nil
}

// Save overwrites the recorded state.
func (s *IngestStateStore) Save(_ context.Context, state domain.IngestState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &state
	return nil
}
