package driving

import (
	"context"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// ChatService produces retrieval-grounded answers.
type ChatService interface {
	// Answer retrieves context for the question and completes an
	// answer in one shot. An empty knowledge base yields an Answer
	// with NeedsIngest set instead of a model call.
	Answer(ctx context.Context, question string, history []domain.ChatTurn) (*domain.Answer, error)

	// AnswerStream behaves like Answer but streams response deltas.
	// The text channel closes when the response completes; one error
	// (or nil) follows on the error channel.
	AnswerStream(ctx context.Context, question string, history []domain.ChatTurn) (<-chan string, <-chan error)
}
