package domain

import (
	"sort"
	"strings"
	"time"
)

// Source is one configured website the assistant ingests. Sources are
// edited through the source directory; ingestion only ever reads the
// active ones, ordered ascending by Order.
type Source struct {
	// ID is the unique identifier for the source.
	ID string `toml:"id" json:"id"`

	// Name is the human-readable name, used to prefix crawled page
	// titles for attribution.
	Name string `toml:"name" json:"name"`

	// URL is the site address handed to the crawl provider.
	URL string `toml:"url" json:"url"`

	// Active gates whether the source participates in ingestion.
	Active bool `toml:"active" json:"active"`

	// Order fixes the crawl sequence, ascending.
	Order int `toml:"order" json:"order"`
}

// DisplayName returns the source name, falling back to the URL when the
// source is unnamed.
func (s *Source) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}

// SourcesSignature computes the canonical signature of a source set:
// the source URLs, sorted, joined with "|". A changed signature means
// the configuration drifted and cached ingestion results are invalid
// regardless of their age.
func SourcesSignature(sources []Source) string {
	urls := make([]string, 0, len(sources))
	for _, s := range sources {
		urls = append(urls, s.URL)
	}
	sort.Strings(urls)
	return strings.Join(urls, "|")
}

// IngestState records the outcome of the last completed ingestion run.
// It is overwritten after every run and read before every trigger.
type IngestState struct {
	// LastRunAt is when the last run completed.
	LastRunAt time.Time `json:"lastRunAt"`

	// SourcesSignature is the signature the run was executed against.
	SourcesSignature string `json:"sourcesSignature"`

	// ChunksAdded is how many chunks the run stored.
	ChunksAdded int `json:"chunksAdded"`
}

// CrawledPage is one page returned by the crawl provider, already
// normalised to a strict shape at the adapter boundary.
type CrawledPage struct {
	// URL is the page address.
	URL string

	// Title is the extracted page title, possibly empty.
	Title string

	// Text is the extracted page text.
	Text string
}
