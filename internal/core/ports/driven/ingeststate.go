package driven

import (
	"context"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// IngestStateStore persists the freshness metadata of the last
// ingestion run.
type IngestStateStore interface {
	// Load retrieves the last recorded state. Returns
	// domain.ErrNotFound when no run has been recorded yet.
	Load(ctx context.Context) (*domain.IngestState, error)

	// Save overwrites the recorded state.
	Save(ctx context.Context, state domain.IngestState) error
}
