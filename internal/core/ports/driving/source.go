package driving

import (
	"context"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// SourceService manages the crawl source directory.
type SourceService interface {
	// Add registers a new source and returns it with its assigned ID
	// and crawl order.
	Add(ctx context.Context, name, url string) (*domain.Source, error)

	// List returns every configured source ordered by crawl order.
	List(ctx context.Context) ([]domain.Source, error)

	// Remove deletes a source by ID.
	Remove(ctx context.Context, id string) error

	// SetActive toggles a source's participation in ingestion.
	SetActive(ctx context.Context, id string, active bool) error
}
