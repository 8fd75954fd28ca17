package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoSources indicates no active crawl sources are configured.
	// Ingestion reports this instead of attempting network calls.
	ErrNoSources = errors.New("no sources configured")

	// ErrIngestInProgress indicates another ingestion run holds the
	// single-writer lock.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Both ingestion and retrieval need it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCompletionUnavailable indicates the completion service is not
	// configured or unreachable. Chat answers are disabled without it.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrCrawlUnavailable indicates the crawl provider rejected or failed
	// a fetch request. Distinct from a source legitimately having no pages.
	ErrCrawlUnavailable = errors.New("crawl provider unavailable")

	// ErrExtractionFailed indicates raw text could not be extracted from
	// a file (empty, corrupt, or damaged payload).
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrUnsupportedFormat indicates a file format no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
