package driven

import (
	"context"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// ChatOptions tune a completion request.
type ChatOptions struct {
	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int

	// Temperature sets sampling randomness. Zero means provider default.
	Temperature float64
}

// CompletionService produces natural-language answers. It consumes the
// context block the retrieval side assembles; it never reads the
// knowledge store itself.
type CompletionService interface {
	// Chat conducts a conversation and returns the full response.
	Chat(ctx context.Context, messages []domain.ChatTurn, opts ChatOptions) (string, error)

	// StreamChat conducts a conversation and streams response deltas.
	// The text channel closes when the response is complete; a single
	// error (or nil) arrives on the error channel afterwards.
	StreamChat(ctx context.Context, messages []domain.ChatTurn, opts ChatOptions) (<-chan string, <-chan error)

	// ModelName returns the name of the completion model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
