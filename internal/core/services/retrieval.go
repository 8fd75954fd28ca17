package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driving"
	"github.com/sitechat-io/sitechat-cli/internal/logger"
)

// Ensure Retriever implements the driving port.
var _ driving.RetrievalService = (*Retriever)(nil)

// Default result counts for the two retrieval modes. Crawled-only mode
// feeds a language model rather than a human, so it returns far more.
const (
	DefaultTopK        = 4
	DefaultCrawledTopK = 15
)

// minKeywordLength filters query noise: only words longer than this
// count as keywords.
const minKeywordLength = 2

// keywordBoost is the per-match score multiplier increment applied in
// general retrieval.
const keywordBoost = 0.2

// crawledScoreFloor is the acceptance threshold in crawled-only
// retrieval. Deliberately loose: when crawled pages are the only
// answer source, recall matters more than score confidence.
const crawledScoreFloor = 0.001

// Retriever scores stored chunks against a query. It is stateless;
// every call reads the current store contents.
type Retriever struct {
	knowledge driven.KnowledgeStore
	embedder  driven.EmbeddingService

	defaultTopK        int
	defaultCrawledTopK int
}

// RetrieverOption configures the retriever.
type RetrieverOption func(*Retriever)

// WithDefaultTopK overrides the result count used when Retrieve is
// called with topK <= 0.
func WithDefaultTopK(n int) RetrieverOption {
	return func(r *Retriever) {
		if n > 0 {
			r.defaultTopK = n
		}
	}
}

// WithDefaultCrawledTopK overrides the result count used when
// RetrieveCrawled is called with topK <= 0.
func WithDefaultCrawledTopK(n int) RetrieverOption {
	return func(r *Retriever) {
		if n > 0 {
			r.defaultCrawledTopK = n
		}
	}
}

// NewRetriever creates the retrieval service.
func NewRetriever(knowledge driven.KnowledgeStore, embedder driven.EmbeddingService, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		knowledge:          knowledge,
		embedder:           embedder,
		defaultTopK:        DefaultTopK,
		defaultCrawledTopK: DefaultCrawledTopK,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Retrieve returns the topK best-scoring chunks across the whole
// knowledge base. Crawled chunks rank ahead of curated ones regardless
// of raw score: the crawled corpus is what the operator asked the
// assistant to answer from.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = r.defaultTopK
	}

	index, err := r.knowledge.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge index: %w", err)
	}
	if len(index.Chunks) == 0 {
		return nil, nil
	}

	queryVector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	keywords := queryKeywords(query)

	var crawled, curated []domain.RetrievedChunk
	for i := range index.Chunks {
		chunk := &index.Chunks[i]

		hits := countKeywordHits(keywords, chunk.Content)
		score := cosineSimilarity(queryVector, chunk.Embedding) * chunk.Priority.Weight()
		score *= 1 + keywordBoost*float64(hits)
		if score <= 0 {
			continue
		}

		result := domain.RetrievedChunk{Chunk: *chunk, Score: score, KeywordHits: hits}
		if chunk.IsCrawled() {
			crawled = append(crawled, result)
		} else {
			curated = append(curated, result)
		}
	}

	sortByScore(crawled)
	sortByScore(curated)

	results := append(crawled, curated...)
	if len(results) > topK {
		results = results[:topK]
	}

	logger.Debug("Retrieved %d/%d chunks for %q", len(results), len(index.Chunks), query)
	return results, nil
}

// RetrieveCrawled restricts candidates to crawled content and ranks by
// keyword overlap first, embedding score second. In a narrow site
// corpus, lexical presence is the stronger relevance signal.
func (r *Retriever) RetrieveCrawled(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = r.defaultCrawledTopK
	}

	index, err := r.knowledge.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge index: %w", err)
	}

	// Collect candidates before touching the embedder: an empty crawled
	// set returns immediately, which callers read as "ingest first".
	var candidates []*domain.Chunk
	for i := range index.Chunks {
		if index.Chunks[i].IsCrawled() {
			candidates = append(candidates, &index.Chunks[i])
		}
	}
	if len(candidates) == 0 {
		logger.Debug("No crawled chunks in the knowledge base")
		return nil, nil
	}

	queryVector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	keywords := queryKeywords(query)

	var results []domain.RetrievedChunk
	for _, chunk := range candidates {
		score := cosineSimilarity(queryVector, chunk.Embedding) * chunk.Priority.Weight()
		if score <= crawledScoreFloor {
			continue
		}

		results = append(results, domain.RetrievedChunk{
			Chunk:       *chunk,
			Score:       score,
			KeywordHits: countKeywordHits(keywords, chunk.Content),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].KeywordHits != results[j].KeywordHits {
			return results[i].KeywordHits > results[j].KeywordHits
		}
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}

	logger.Debug("Retrieved %d/%d crawled chunks for %q", len(results), len(candidates), query)
	return results, nil
}

// sortByScore orders results descending by score, preserving store
// order among equals.
func sortByScore(results []domain.RetrievedChunk) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths or a zero vector yield 0, never an error or NaN.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// queryKeywords lowercases the query and keeps the words long enough
// to carry meaning.
func queryKeywords(query string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(w) > minKeywordLength {
			words = append(words, w)
		}
	}
	return words
}

// countKeywordHits counts how many query keywords appear as substrings
// of the content.
func countKeywordHits(keywords []string, content string) int {
	if len(keywords) == 0 {
		return 0
	}

	lower := strings.ToLower(content)
	hits := 0
	for _, w := range keywords {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	return hits
}
