package driving

import (
	"context"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// IngestService drives the crawl and file ingestion pipelines.
type IngestService interface {
	// Ingest crawls every active source and rebuilds the crawled part
	// of the knowledge base. With force false, a fresh previous run
	// against the same source configuration short-circuits. Expected
	// failures (no sources, per-source errors) are data in the report;
	// the error return is reserved for lock contention, storage I/O
	// and programmer errors.
	Ingest(ctx context.Context, force bool) (*domain.IngestReport, error)

	// IngestFile adds one operator-supplied file as curated content.
	// Curated chunks survive crawl re-ingestion.
	IngestFile(ctx context.Context, path string, opts domain.CuratedOptions) (*domain.IngestReport, error)
}
