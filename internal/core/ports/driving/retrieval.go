package driving

import (
	"context"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// RetrievalService ranks stored chunks against a query.
type RetrievalService interface {
	// Retrieve returns the topK best chunks across the whole knowledge
	// base. Crawled chunks always rank ahead of curated ones,
	// regardless of raw score. topK <= 0 selects the default.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)

	// RetrieveCrawled restricts candidates to crawled content. Zero
	// crawled chunks in the store short-circuits to an empty result
	// before any embedding call, which is the caller's signal that
	// ingestion has to run first.
	RetrieveCrawled(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
}
