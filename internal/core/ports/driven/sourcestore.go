package driven

import (
	"context"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// SourceStore is the crawl source directory.
type SourceStore interface {
	// ListActive returns the active sources ordered ascending by
	// Order. An unreachable or missing backing store yields an empty
	// list, not an error, so ingestion can report "no sources
	// configured" instead of crashing.
	ListActive(ctx context.Context) ([]domain.Source, error)

	// List returns every source, active or not, ordered by Order.
	List(ctx context.Context) ([]domain.Source, error)

	// Save stores or updates a source.
	Save(ctx context.Context, source domain.Source) error

	// Delete removes a source. Returns domain.ErrNotFound when the
	// source does not exist.
	Delete(ctx context.Context, id string) error

	// SetActive toggles a source's participation in ingestion.
	SetActive(ctx context.Context, id string, active bool) error
}
