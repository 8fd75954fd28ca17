package domain

import "time"

// IngestOutcome describes how an ingestion request concluded.
type IngestOutcome string

// Ingestion outcomes.
const (
	// OutcomeIngested means the pipeline ran and the store was rewritten.
	OutcomeIngested IngestOutcome = "ingested"

	// OutcomeCacheHit means the freshness gate short-circuited the run;
	// no network activity, no store mutation.
	OutcomeCacheHit IngestOutcome = "cache_hit"

	// OutcomeNoSources means no active sources were configured and
	// nothing was attempted.
	OutcomeNoSources IngestOutcome = "no_sources"
)

// String returns the string representation.
func (o IngestOutcome) String() string {
	return string(o)
}

// IngestReport is the aggregate result of one ingestion request.
// Expected failures (per-source errors, empty configuration) are data
// here, never Go errors.
type IngestReport struct {
	// Outcome is how the request concluded.
	Outcome IngestOutcome `json:"outcome"`

	// StartedAt is when the request began.
	StartedAt time.Time `json:"startedAt"`

	// Duration is the wall time of the request.
	Duration time.Duration `json:"duration"`

	// TotalChunksAdded is the sum of chunks stored across sources.
	// On a cache hit it echoes the last recorded run's count.
	TotalChunksAdded int `json:"totalChunksAdded"`

	// Sources holds one entry per processed source, in crawl order.
	Sources []SourceReport `json:"sources,omitempty"`
}

// FailedSources counts the per-source failures in the report.
func (r *IngestReport) FailedSources() int {
	n := 0
	for i := range r.Sources {
		if !r.Sources[i].Success {
			n++
		}
	}
	return n
}

// AllFailed reports whether every processed source failed.
func (r *IngestReport) AllFailed() bool {
	return len(r.Sources) > 0 && r.FailedSources() == len(r.Sources)
}

// CuratedOptions describe how an operator-supplied file enters the
// knowledge base.
type CuratedOptions struct {
	// Title overrides the extracted title when non-empty.
	Title string

	// Priority is the retrieval weighting class; defaults to standard.
	Priority Priority

	// Language is the document language code; defaults to "en".
	Language string

	// Tags are extra labels beyond the implicit "curated".
	Tags []string
}

// SourceReport is the per-source slice of an ingestion run.
type SourceReport struct {
	// SourceID identifies the source.
	SourceID string `json:"sourceId"`

	// SourceName is the source's display name at run time.
	SourceName string `json:"sourceName"`

	// URL is the address that was crawled.
	URL string `json:"url"`

	// Success is false when the source's crawl or embedding failed.
	Success bool `json:"success"`

	// PagesFetched is how many usable pages the provider returned.
	PagesFetched int `json:"pagesFetched"`

	// ChunksAdded is how many chunks this source contributed.
	ChunksAdded int `json:"chunksAdded"`

	// Error carries the failure description when Success is false.
	Error string `json:"error,omitempty"`
}
