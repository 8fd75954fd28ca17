package domain

import (
	"strings"
	"time"
)

// Origin discriminates how content entered the knowledge base.
// Crawled content is the designated primary source of truth and always
// ranks ahead of curated content at retrieval time.
type Origin string

// Content origins.
const (
	// OriginCrawled marks content extracted from a configured website.
	OriginCrawled Origin = "crawled"

	// OriginCurated marks content added by the operator from local files.
	OriginCurated Origin = "curated"
)

// IsValid returns true if the origin is recognised.
func (o Origin) IsValid() bool {
	switch o {
	case OriginCrawled, OriginCurated:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (o Origin) String() string {
	return string(o)
}

// Priority ranks how strongly a document should be favoured at
// retrieval time. It multiplies the similarity score of every chunk
// derived from the document.
type Priority string

// Available priorities.
const (
	// PriorityCritical is must-surface content (weight 1.30).
	PriorityCritical Priority = "critical"

	// PriorityHigh is important content (weight 1.15).
	PriorityHigh Priority = "high"

	// PriorityStandard is the neutral default (weight 1.00).
	PriorityStandard Priority = "standard"

	// PriorityReference is background material (weight 0.85).
	PriorityReference Priority = "reference"
)

// IsValid returns true if the priority is recognised.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityStandard, PriorityReference:
		return true
	default:
		return false
	}
}

// Weight returns the retrieval score multiplier for this priority.
// Unrecognised values fall back to the neutral weight.
func (p Priority) Weight() float64 {
	switch p {
	case PriorityCritical:
		return 1.30
	case PriorityHigh:
		return 1.15
	case PriorityReference:
		return 0.85
	default:
		return 1.00
	}
}

// String returns the string representation.
func (p Priority) String() string {
	return string(p)
}

// Description returns a human-readable description of the priority.
func (p Priority) Description() string {
	switch p {
	case PriorityCritical:
		return "Critical (always surface first)"
	case PriorityHigh:
		return "High (boosted)"
	case PriorityStandard:
		return "Standard (neutral)"
	case PriorityReference:
		return "Reference (background material)"
	default:
		return "Unknown"
	}
}

// AllPriorities returns every recognised priority, strongest first.
func AllPriorities() []Priority {
	return []Priority{
		PriorityCritical,
		PriorityHigh,
		PriorityStandard,
		PriorityReference,
	}
}

// Tags carried on chunks. Origin is the authoritative discriminator;
// the tags stay on the persisted records so the index file remains
// self-describing.
const (
	// TagCrawled marks chunks produced by website ingestion.
	TagCrawled = "crawled"

	// TagWeb marks chunks whose document came from a web page.
	TagWeb = "web"

	// TagCurated marks chunks added from local files.
	TagCurated = "curated"
)

// Document is a unit of indexable content. It is either synthesised
// from a crawled page or built from an operator-supplied file. Documents
// are never mutated after creation; re-ingestion supersedes them.
type Document struct {
	// ID is the unique identifier for the document.
	// Crawled pages receive a synthetic identifier.
	ID string

	// Title is the human-readable title. Crawled page titles are
	// prefixed with their source name for attribution.
	Title string

	// Slug is a URL-safe short name, derived from the page URL for
	// crawled documents and from the file name for curated ones.
	Slug string

	// Content is the full normalised text before chunking.
	Content string

	// Tags label the document; crawled documents always carry "crawled".
	Tags []string

	// Language is the document's language code (e.g. "en").
	Language string

	// Priority is the retrieval weighting class.
	Priority Priority

	// Origin records how the document entered the knowledge base.
	Origin Origin

	// UpdatedAt is when the document content was produced.
	UpdatedAt time.Time
}

// Chunk is the atomic retrievable unit: a bounded passage of document
// text paired with its embedding vector. Chunks are immutable once
// stored and are destroyed only by tag-filtered bulk delete or full
// index regeneration.
type Chunk struct {
	// ID is the unique identifier, "<documentID>:<chunkIndex>".
	ID string `json:"id"`

	// DocumentID links to the document this chunk was cut from.
	DocumentID string `json:"documentId"`

	// DocumentTitle is denormalised for display and attribution.
	DocumentTitle string `json:"documentTitle"`

	// Slug is the parent document's slug.
	Slug string `json:"slug"`

	// ChunkIndex is the zero-based, contiguous position within the
	// parent document in emission order.
	ChunkIndex int `json:"chunkIndex"`

	// Content is the passage text.
	Content string `json:"content"`

	// Embedding is the vector representation. Its length is constant
	// across the entire index (the embedding model's dimensionality).
	Embedding []float32 `json:"embedding"`

	// Priority is inherited from the parent document.
	Priority Priority `json:"priority"`

	// Origin is inherited from the parent document.
	Origin Origin `json:"origin"`

	// Language is inherited from the parent document.
	Language string `json:"language"`

	// Tags are inherited from the parent document.
	Tags []string `json:"tags"`
}

// HasTag reports whether the chunk carries the given tag.
func (c *Chunk) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsCrawled reports whether the chunk originates from website
// extraction. Origin is authoritative; the tag check keeps index files
// written before the origin field readable.
func (c *Chunk) IsCrawled() bool {
	if c.Origin != "" {
		return c.Origin == OriginCrawled
	}
	return c.HasTag(TagCrawled)
}

// Slugify derives a URL-safe slug from an arbitrary string: lowercase,
// alphanumeric runs joined by single hyphens, at most 80 characters.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		if b.Len() >= 80 {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}
