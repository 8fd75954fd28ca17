package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

// Ensure KnowledgeStore implements the interface.
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// knowledgeFileName is the index document inside the data directory.
const knowledgeFileName = "knowledge.json"

// KnowledgeStore persists the knowledge index as a single JSON document.
// A mutex serialises read-modify-write cycles within this process; the
// flock adapter guards against concurrent processes.
type KnowledgeStore struct {
	mu       sync.Mutex
	filePath string
	model    string
}

// NewKnowledgeStore creates a JSON-backed knowledge store.
// If dataDir is empty, defaults to ~/.sitechat. The model name is
// stamped on empty indexes so a fresh store reports what it will hold.
func NewKnowledgeStore(dataDir, embeddingModel string) (*KnowledgeStore, error) {
	dir, err := resolveDataDir(dataDir)
	if err != nil {
		return nil, err
	}

	return &KnowledgeStore{
		filePath: filepath.Join(dir, knowledgeFileName),
		model:    embeddingModel,
	}, nil
}

// Load returns the persisted index. A missing file is not an error:
// it loads as a well-formed empty index with GeneratedAt at the epoch.
func (s *KnowledgeStore) Load(_ context.Context) (*domain.KnowledgeIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// ReplaceAll overwrites the persisted index in one atomic swap.
func (s *KnowledgeStore) ReplaceAll(_ context.Context, index *domain.KnowledgeIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(index)
}

// AppendChunks loads the current index, appends the new chunks,
// refreshes GeneratedAt and persists the result.
func (s *KnowledgeStore) AppendChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.load()
	if err != nil {
		return err
	}

	index.Chunks = append(index.Chunks, chunks...)
	index.GeneratedAt = time.Now().UTC()
	return s.save(index)
}

// DeleteByTag removes every chunk carrying the tag and reports how
// many were removed. Nothing is written when no chunk matched.
func (s *KnowledgeStore) DeleteByTag(_ context.Context, tag string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.load()
	if err != nil {
		return 0, err
	}

	kept := index.Chunks[:0]
	removed := 0
	for _, chunk := range index.Chunks {
		if chunk.HasTag(tag) {
			removed++
			continue
		}
		kept = append(kept, chunk)
	}
	if removed == 0 {
		return 0, nil
	}

	index.Chunks = kept
	if err := s.save(index); err != nil {
		return 0, err
	}
	return removed, nil
}

// Path returns the index file path.
func (s *KnowledgeStore) Path() string {
	return s.filePath
}

// load reads the index file (caller must hold lock).
func (s *KnowledgeStore) load() (*domain.KnowledgeIndex, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.EmptyIndex(s.model), nil
		}
		return nil, fmt.Errorf("read knowledge index: %w", err)
	}

	var index domain.KnowledgeIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode knowledge index: %w", err)
	}
	if index.Chunks == nil {
		index.Chunks = []domain.Chunk{}
	}
	return &index, nil
}

// save writes the index through a temp file and rename so a crash
// mid-write never leaves a truncated index behind (caller must hold
// lock). os.CreateTemp already restricts the file to 0600.
func (s *KnowledgeStore) save(index *domain.KnowledgeIndex) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode knowledge index: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), knowledgeFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp index: %w", err)
	}

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace knowledge index: %w", err)
	}
	return nil
}
