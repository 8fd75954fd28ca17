package domain

import "time"

// FormatVersion is the current knowledge index schema version.
// Reserved for future migrations; no migration logic exists yet.
const FormatVersion = 1

// KnowledgeIndex is the persisted aggregate of all indexed chunks.
// It is owned exclusively by the knowledge store: read wholesale by the
// retrieval engine, replaced wholesale or filtered-and-rewritten by the
// ingestion orchestrator.
type KnowledgeIndex struct {
	// FormatVersion identifies the serialised schema.
	FormatVersion int `json:"formatVersion"`

	// GeneratedAt is when the index content was last written.
	// The Unix epoch marks an index that has never been generated.
	GeneratedAt time.Time `json:"generatedAt"`

	// EmbeddingModel is the model every stored embedding came from.
	EmbeddingModel string `json:"embeddingModel"`

	// Chunks holds every indexed chunk. No duplicate IDs.
	Chunks []Chunk `json:"chunks"`
}

// EmptyIndex returns a well-formed index with no chunks. GeneratedAt is
// the Unix epoch so freshness checks treat it as never generated.
func EmptyIndex(embeddingModel string) *KnowledgeIndex {
	return &KnowledgeIndex{
		FormatVersion:  FormatVersion,
		GeneratedAt:    time.Unix(0, 0).UTC(),
		EmbeddingModel: embeddingModel,
		Chunks:         []Chunk{},
	}
}

// CrawledCount returns how many chunks originate from website ingestion.
func (i *KnowledgeIndex) CrawledCount() int {
	n := 0
	for idx := range i.Chunks {
		if i.Chunks[idx].IsCrawled() {
			n++
		}
	}
	return n
}

// CuratedCount returns how many chunks were added from local files.
func (i *KnowledgeIndex) CuratedCount() int {
	return len(i.Chunks) - i.CrawledCount()
}
