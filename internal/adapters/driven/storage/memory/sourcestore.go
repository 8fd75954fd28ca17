package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

// Ensure SourceStore implements the interface.
var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore is an in-memory implementation of driven.SourceStore.
type SourceStore struct {
	mu      sync.RWMutex
	sources map[string]domain.Source
}

// NewSourceStore creates a new in-memory source store.
func NewSourceStore() *SourceStore {
	return &SourceStore{
		sources: make(map[string]domain.Source),
	}
}

// Save stores or updates a source.
func (s *SourceStore) Save(_ context.Context, source domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[source.ID] = source
	return nil
}

// Delete removes a source.
func (s *SourceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sources, id)
	return nil
}

// SetActive toggles a source's participation in ingestion.
func (s *SourceStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	source, ok := s.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	source.Active = active
	s.sources[id] = source
	return nil
}

// List returns every source ordered by crawl order.
func (s *SourceStore) List(_ context.Context) ([]domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(domain.Source) bool { return true }), nil
}

// ListActive returns the active sources ordered by crawl order.
func (s *SourceStore) ListActive(_ context.Context) ([]domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(source domain.Source) bool { return source.Active }), nil
}

// snapshot copies the sources matching keep, sorted by Order with name
// as the tiebreaker. Caller must hold at least the read lock.
func (s *SourceStore) snapshot(keep func(domain.Source) bool) []domain.Source {
	result := make([]domain.Source, 0, len(s.sources))
	for _, source := range s.sources {
		if keep(source) {
			result = append(result, source)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Name < result[j].Name
	})
	return result
}
