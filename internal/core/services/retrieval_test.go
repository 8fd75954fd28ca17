package services

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitechat-io/sitechat-cli/internal/adapters/driven/storage/memory"
	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// --- Mock implementations for retrieval testing ---

// retrMockEmbedder implements driven.EmbeddingService, returning one
// fixed query vector.
type retrMockEmbedder struct {
	vector []float32
	err    error
	called bool
}

func (e *retrMockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	e.called = true
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

func (e *retrMockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		vec, err := e.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (e *retrMockEmbedder) Dimensions() int              { return len(e.vector) }
func (e *retrMockEmbedder) ModelName() string            { return "mock-embed" }
func (e *retrMockEmbedder) Ping(_ context.Context) error { return nil }
func (e *retrMockEmbedder) Close() error                 { return nil }

// unitVector builds a 2D unit vector whose cosine against [1, 0] is
// exactly x, letting tests dial in similarity scores.
func unitVector(x float64) []float32 {
	return []float32{float32(x), float32(math.Sqrt(1 - x*x))}
}

func crawledChunk(id, content string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Content:   content,
		Embedding: embedding,
		Priority:  domain.PriorityStandard,
		Origin:    domain.OriginCrawled,
		Tags:      []string{domain.TagCrawled, domain.TagWeb},
	}
}

func curatedChunk(id, content string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Content:   content,
		Embedding: embedding,
		Priority:  domain.PriorityStandard,
		Origin:    domain.OriginCurated,
		Tags:      []string{domain.TagCurated},
	}
}

func seededRetriever(t *testing.T, chunks []domain.Chunk, queryVector []float32) (*Retriever, *retrMockEmbedder) {
	t.Helper()
	store := memory.NewKnowledgeStore("mock-embed")
	require.NoError(t, store.AppendChunks(context.Background(), chunks))
	embedder := &retrMockEmbedder{vector: queryVector}
	return NewRetriever(store, embedder), embedder
}

// --- Tests ---

func TestRetrieve_CrawledAlwaysOutranksCurated(t *testing.T) {
	// Curated chunks score far higher, yet crawled must come first.
	retriever, _ := seededRetriever(t, []domain.Chunk{
		curatedChunk("cur-high", "curated note one", unitVector(0.9)),
		crawledChunk("web-low", "crawled page one", unitVector(0.3)),
		curatedChunk("cur-mid", "curated note two", unitVector(0.8)),
		crawledChunk("web-lower", "crawled page two", unitVector(0.2)),
	}, unitVector(1))

	results, err := retriever.Retrieve(context.Background(), "alpha", 4)

	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "web-low", results[0].Chunk.ID)
	assert.Equal(t, "web-lower", results[1].Chunk.ID)
	assert.Equal(t, "cur-high", results[2].Chunk.ID)
	assert.Equal(t, "cur-mid", results[3].Chunk.ID)
}

func TestRetrieve_TopKTruncates(t *testing.T) {
	retriever, _ := seededRetriever(t, []domain.Chunk{
		crawledChunk("a", "crawled page one", unitVector(0.9)),
		crawledChunk("b", "crawled page two", unitVector(0.8)),
		crawledChunk("c", "crawled page three", unitVector(0.7)),
	}, unitVector(1))

	results, err := retriever.Retrieve(context.Background(), "alpha", 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.Equal(t, "b", results[1].Chunk.ID)
}

func TestRetrieve_DefaultTopK(t *testing.T) {
	chunks := make([]domain.Chunk, 0, 6)
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("chunk-%d", i)
		chunks = append(chunks, crawledChunk(id, "crawled page body", unitVector(0.9-0.1*float64(i))))
	}
	retriever, _ := seededRetriever(t, chunks, unitVector(1))

	results, err := retriever.Retrieve(context.Background(), "alpha", 0)

	require.NoError(t, err)
	assert.Len(t, results, DefaultTopK)
}

func TestRetrieve_KeywordBoost(t *testing.T) {
	shared := unitVector(0.5)
	retriever, _ := seededRetriever(t, []domain.Chunk{
		crawledChunk("plain", "general maintenance advice", shared),
		crawledChunk("boosted", "we patch systems on friday", shared),
	}, unitVector(1))

	results, err := retriever.Retrieve(context.Background(), "patch systems today", 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "boosted", results[0].Chunk.ID)
	assert.Equal(t, 2, results[0].KeywordHits)
	assert.Zero(t, results[1].KeywordHits)
	// Same cosine, so the gap is exactly the 1 + 0.2*2 boost.
	assert.InDelta(t, results[1].Score*1.4, results[0].Score, 1e-6)
}

func TestRetrieve_KeywordMatchIsCaseInsensitive(t *testing.T) {
	retriever, _ := seededRetriever(t, []domain.Chunk{
		crawledChunk("upper", "Always PATCH Systems promptly", unitVector(0.5)),
	}, unitVector(1))

	results, err := retriever.Retrieve(context.Background(), "patch SYSTEMS", 1)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].KeywordHits)
}

func TestRetrieve_PriorityWeights(t *testing.T) {
	shared := unitVector(0.5)
	critical := crawledChunk("critical", "crawled page body", shared)
	critical.Priority = domain.PriorityCritical
	reference := crawledChunk("reference", "crawled page body", shared)
	reference.Priority = domain.PriorityReference

	retriever, _ := seededRetriever(t, []domain.Chunk{reference, critical}, unitVector(1))

	results, err := retriever.Retrieve(context.Background(), "alpha", 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "critical", results[0].Chunk.ID)
	assert.InDelta(t, 0.5*1.30, results[0].Score, 1e-6)
	assert.InDelta(t, 0.5*0.85, results[1].Score, 1e-6)
}

func TestRetrieve_DiscardsNonPositiveScores(t *testing.T) {
	retriever, _ := seededRetriever(t, []domain.Chunk{
		crawledChunk("zero", "crawled page body", []float32{0, 0}),
		crawledChunk("negative", "crawled page body", unitVector(-0.5)),
		crawledChunk("positive", "crawled page body", unitVector(0.5)),
	}, unitVector(1))

	results, err := retriever.Retrieve(context.Background(), "alpha", 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "positive", results[0].Chunk.ID)
}

func TestRetrieve_EmptyStore(t *testing.T) {
	store := memory.NewKnowledgeStore("mock-embed")
	embedder := &retrMockEmbedder{vector: unitVector(1)}
	retriever := NewRetriever(store, embedder)

	results, err := retriever.Retrieve(context.Background(), "alpha", 4)

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, embedder.called, "an empty store needs no query embedding")
}

func TestRetrieveCrawled_EmptyWithoutCrawledChunks(t *testing.T) {
	retriever, embedder := seededRetriever(t, []domain.Chunk{
		curatedChunk("cur", "curated note", unitVector(0.9)),
	}, unitVector(1))

	results, err := retriever.RetrieveCrawled(context.Background(), "alpha", 15)

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, embedder.called, "the ingest-first signal must not cost an embedding call")
}

func TestRetrieveCrawled_KeywordHitsOutrankScore(t *testing.T) {
	retriever, _ := seededRetriever(t, []domain.Chunk{
		crawledChunk("two-hits-low", "patch systems intro", unitVector(0.3)),
		crawledChunk("three-hits", "patch systems software guide", unitVector(0.1)),
		crawledChunk("two-hits-high", "patch systems overview", unitVector(0.5)),
	}, unitVector(1))

	results, err := retriever.RetrieveCrawled(context.Background(), "patch systems software", 15)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "three-hits", results[0].Chunk.ID)
	assert.Equal(t, "two-hits-high", results[1].Chunk.ID)
	assert.Equal(t, "two-hits-low", results[2].Chunk.ID)
}

func TestRetrieveCrawled_FloorIsLowerThanGeneral(t *testing.T) {
	// Scores this faint are kept by both modes; only scores at or
	// below the crawled floor differ between them.
	faint := crawledChunk("faint", "barely related body", unitVector(0.01))
	belowFloor := crawledChunk("below", "unrelated body text", unitVector(0.0005))

	retriever, _ := seededRetriever(t, []domain.Chunk{faint, belowFloor}, unitVector(1))

	crawledResults, err := retriever.RetrieveCrawled(context.Background(), "alpha", 15)
	require.NoError(t, err)
	require.Len(t, crawledResults, 1)
	assert.Equal(t, "faint", crawledResults[0].Chunk.ID)

	generalResults, err := retriever.Retrieve(context.Background(), "alpha", 15)
	require.NoError(t, err)
	assert.Len(t, generalResults, 2, "general mode keeps any positive score")
}

func TestRetrieveCrawled_DefaultTopK(t *testing.T) {
	chunks := make([]domain.Chunk, 0, DefaultCrawledTopK+1)
	for i := 0; i <= DefaultCrawledTopK; i++ {
		id := fmt.Sprintf("chunk-%d", i)
		chunks = append(chunks, crawledChunk(id, "crawled page body", unitVector(0.2+0.04*float64(i))))
	}
	retriever, _ := seededRetriever(t, chunks, unitVector(1))

	results, err := retriever.RetrieveCrawled(context.Background(), "alpha", 0)

	require.NoError(t, err)
	assert.Len(t, results, DefaultCrawledTopK)
}

func TestRetrieve_EmbedErrorPropagates(t *testing.T) {
	store := memory.NewKnowledgeStore("mock-embed")
	require.NoError(t, store.AppendChunks(context.Background(), []domain.Chunk{
		crawledChunk("a", "crawled page body", unitVector(0.5)),
	}))
	embedder := &retrMockEmbedder{err: domain.ErrEmbeddingUnavailable}
	retriever := NewRetriever(store, embedder)

	_, err := retriever.Retrieve(context.Background(), "alpha", 4)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, err = retriever.RetrieveCrawled(context.Background(), "alpha", 15)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

// --- Scoring helper tests ---

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{1, 0}, []float32{0, 0}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
		{"scale invariant", []float32{2, 0}, []float32{5, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestQueryKeywords(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"drops short words", "how to patch systems", []string{"how", "patch", "systems"}},
		{"lowercases", "PATCH Systems", []string{"patch", "systems"}},
		{"empty query", "", nil},
		{"only short words", "a to of", nil},
		{"collapses whitespace", "  patch   systems  ", []string{"patch", "systems"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, queryKeywords(tt.query))
		})
	}
}

func TestCountKeywordHits(t *testing.T) {
	keywords := []string{"patch", "systems", "audit"}

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"all present", "We patch systems and audit them.", 3},
		{"substring match", "Patching subsystems counts too.", 2},
		{"case insensitive", "PATCH SYSTEMS", 2},
		{"none", "Completely unrelated text.", 0},
		{"empty content", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countKeywordHits(keywords, tt.content))
		})
	}
}

func TestRetrieve_ConfiguredDefaultTopK(t *testing.T) {
	chunks := make([]domain.Chunk, 0, 6)
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("chunk-%d", i)
		chunks = append(chunks, crawledChunk(id, "crawled page body", unitVector(0.9-0.1*float64(i))))
	}
	store := memory.NewKnowledgeStore("mock-embed")
	require.NoError(t, store.AppendChunks(context.Background(), chunks))
	retriever := NewRetriever(store, &retrMockEmbedder{vector: unitVector(1)},
		WithDefaultTopK(2), WithDefaultCrawledTopK(3))

	results, err := retriever.Retrieve(context.Background(), "alpha", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	crawled, err := retriever.RetrieveCrawled(context.Background(), "alpha", 0)
	require.NoError(t, err)
	assert.Len(t, crawled, 3)

	// Explicit topK still wins over the configured default.
	results, err = retriever.Retrieve(context.Background(), "alpha", 4)
	require.NoError(t, err)
	assert.Len(t, results, 4)
}
