package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

// Ensure KnowledgeStore implements the interface.
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// KnowledgeStore is an in-memory implementation of driven.KnowledgeStore.
type KnowledgeStore struct {
	mu    sync.RWMutex
	model string
	index *domain.KnowledgeIndex
}

// NewKnowledgeStore creates a new in-memory knowledge store. The model
// name is stamped on empty indexes, mirroring the file store.
func NewKnowledgeStore(model string) *KnowledgeStore {
	return &KnowledgeStore{model: model}
}

// Load returns a copy of the stored index, or a well-formed empty
// index when nothing has been written yet.
func (s *KnowledgeStore) Load(_ context.Context) (*domain.KnowledgeIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return domain.EmptyIndex(s.model), nil
	}
	return copyIndex(s.index), nil
}

// ReplaceAll overwrites the stored index.
func (s *KnowledgeStore) ReplaceAll(_ context.Context, index *domain.KnowledgeIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = copyIndex(index)
	return nil
}

// AppendChunks appends to the stored index and refreshes GeneratedAt.
func (s *KnowledgeStore) AppendChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		s.index = domain.EmptyIndex(s.model)
	}
	s.index.Chunks = append(s.index.Chunks, chunks...)
	s.index.GeneratedAt = time.Now().UTC()
	return nil
}

// DeleteByTag removes every chunk carrying the tag and reports how
// many were removed.
func (s *KnowledgeStore) DeleteByTag(_ context.Context, tag string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return 0, nil
	}

	kept := s.index.Chunks[:0]
	removed := 0
	for _, chunk := range s.index.Chunks {
		if chunk.HasTag(tag) {
			removed++
			continue
		}
		kept = append(kept, chunk)
	}
	s.index.Chunks = kept
	return removed, nil
}

// copyIndex clones the index so callers never alias internal state.
func copyIndex(index *domain.KnowledgeIndex) *domain.KnowledgeIndex {
	clone := *index
	clone.Chunks = make([]domain.Chunk, len(index.Chunks))
	copy(clone.Chunks, index.Chunks)
	return &clone
}
