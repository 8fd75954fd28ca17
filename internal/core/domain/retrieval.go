package domain

// RetrievedChunk pairs a chunk with its retrieval-time scoring detail.
// The score already folds in priority weighting and, in general mode,
// the keyword boost.
type RetrievedChunk struct {
	// Chunk is the retrieved passage.
	Chunk Chunk

	// Score is the composite retrieval score.
	Score float64

	// KeywordHits is how many query keywords matched the content.
	KeywordHits int
}
