package driven

import "context"

// EmbeddingService generates vector embeddings from text. Both halves
// of the pipeline depend on it: ingestion embeds chunk batches and
// retrieval embeds the query.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Any API speaking the same wire format
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// The result has exactly one vector per input text, in input order;
	// callers zip chunks with vectors by position. A rejected call fails
	// the whole batch - there are no partial results.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 1536, 3072).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
