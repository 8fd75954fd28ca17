package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driving"
	"github.com/sitechat-io/sitechat-cli/internal/logger"
)

// Ensure ChatService implements the driving port.
var _ driving.ChatService = (*ChatService)(nil)

// defaultSystemPrompt grounds the assistant in retrieved site content.
// Operators can override it with a prompt file named "chat_system".
const defaultSystemPrompt = `You are a helpful assistant that answers questions about specific websites.
Ground every answer in the context passages below. If the context does not
contain the answer, say so plainly instead of guessing. Cite passages by
number, like [1], when it helps the reader check your answer.`

// emptyKnowledgeHint is the canned answer when nothing is indexed yet.
const emptyKnowledgeHint = `I don't have any site content indexed yet. Run "sitechat ingest" to crawl your configured sources, then ask again.`

// ChatService answers questions by retrieving stored chunks and
// handing them to the completion model as grounding context.
type ChatService struct {
	retriever  driving.RetrievalService
	completion driven.CompletionService
	prompts    driven.PromptStore
	options    driven.ChatOptions
}

// ChatServiceOption configures the chat service.
type ChatServiceOption func(*ChatService)

// WithCompletionOptions sets the per-request completion tuning.
func WithCompletionOptions(opts driven.ChatOptions) ChatServiceOption {
	return func(s *ChatService) {
		s.options = opts
	}
}

// NewChatService creates the chat service. The prompt store may be
// nil, in which case the built-in system prompt is used.
func NewChatService(
	retriever driving.RetrievalService,
	completion driven.CompletionService,
	prompts driven.PromptStore,
	opts ...ChatServiceOption,
) *ChatService {
	s := &ChatService{
		retriever:  retriever,
		completion: completion,
		prompts:    prompts,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Answer retrieves context for the question and completes an answer in
// one shot. An empty knowledge base yields the ingest hint instead of
// a model call.
func (s *ChatService) Answer(ctx context.Context, question string, history []domain.ChatTurn) (*domain.Answer, error) {
	if s.completion == nil {
		return nil, domain.ErrCompletionUnavailable
	}

	chunks, err := s.retrieveContext(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &domain.Answer{Text: emptyKnowledgeHint, NeedsIngest: true}, nil
	}

	messages := s.buildMessages(question, history, BuildContext(chunks))
	text, err := s.completion.Chat(ctx, messages, s.options)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	return &domain.Answer{Text: text, Context: chunks}, nil
}

// AnswerStream behaves like Answer but streams response deltas.
func (s *ChatService) AnswerStream(ctx context.Context, question string, history []domain.ChatTurn) (<-chan string, <-chan error) {
	if s.completion == nil {
		return failedStream(domain.ErrCompletionUnavailable)
	}

	chunks, err := s.retrieveContext(ctx, question)
	if err != nil {
		return failedStream(err)
	}
	if len(chunks) == 0 {
		return cannedStream(emptyKnowledgeHint)
	}

	messages := s.buildMessages(question, history, BuildContext(chunks))
	return s.completion.StreamChat(ctx, messages, s.options)
}

// retrieveContext prefers crawled content and falls back to the whole
// index, so curated documents can still answer when no crawled chunk
// matches the question.
func (s *ChatService) retrieveContext(ctx context.Context, question string) ([]domain.RetrievedChunk, error) {
	chunks, err := s.retriever.RetrieveCrawled(ctx, question, 0)
	if err != nil {
		return nil, fmt.Errorf("retrieve crawled context: %w", err)
	}
	if len(chunks) > 0 {
		return chunks, nil
	}

	logger.Debug("No crawled context matched, falling back to full index")
	chunks, err = s.retriever.Retrieve(ctx, question, 0)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	return chunks, nil
}

// buildMessages assembles the completion request: system prompt with
// the context block, prior turns, then the question.
func (s *ChatService) buildMessages(question string, history []domain.ChatTurn, contextBlock string) []domain.ChatTurn {
	system := s.systemPrompt() + "\n\nContext passages:\n\n" + contextBlock

	messages := make([]domain.ChatTurn, 0, len(history)+2)
	messages = append(messages, domain.ChatTurn{Role: domain.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, domain.ChatTurn{Role: domain.RoleUser, Content: question})
	return messages
}

// systemPrompt returns the operator override when one exists, the
// built-in prompt otherwise.
func (s *ChatService) systemPrompt() string {
	if s.prompts == nil {
		return defaultSystemPrompt
	}

	prompt, err := s.prompts.Load(driven.PromptChatSystem)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Failed to load system prompt override: %v", err)
		}
		return defaultSystemPrompt
	}
	if strings.TrimSpace(prompt) == "" {
		return defaultSystemPrompt
	}
	return prompt
}

// failedStream returns an already-terminated stream carrying err.
func failedStream(err error) (<-chan string, <-chan error) {
	text := make(chan string)
	close(text)
	errs := make(chan error, 1)
	errs <- err
	return text, errs
}

// cannedStream emits one fixed message and completes cleanly.
func cannedStream(message string) (<-chan string, <-chan error) {
	text := make(chan string, 1)
	text <- message
	close(text)
	errs := make(chan error, 1)
	errs <- nil
	return text, errs
}
