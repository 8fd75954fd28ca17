package driven

import (
	"context"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// KnowledgeStore persists the knowledge index. The index is owned
// exclusively by this store: the retrieval engine reads it wholesale,
// the ingestion orchestrator replaces or filters-and-rewrites it.
//
// Storage I/O failures propagate to the caller untouched; retry policy
// does not live at this layer.
type KnowledgeStore interface {
	// Load returns the persisted index. A missing index is not an
	// error: implementations return a well-formed empty index with
	// GeneratedAt at the Unix epoch.
	Load(ctx context.Context) (*domain.KnowledgeIndex, error)

	// ReplaceAll atomically overwrites the persisted index.
	ReplaceAll(ctx context.Context, index *domain.KnowledgeIndex) error

	// AppendChunks loads the current index, appends the new chunks,
	// refreshes GeneratedAt and persists the result.
	AppendChunks(ctx context.Context, chunks []domain.Chunk) error

	// DeleteByTag removes every chunk whose tag set contains tag and
	// reports how many were removed.
	DeleteByTag(ctx context.Context, tag string) (int, error)
}
