package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driving"
)

// stubChatService scripts the same stream for every question and
// records what it was asked.
type stubChatService struct {
	deltas    []string
	err       error
	questions []string
	histories [][]domain.ChatTurn
}

var _ driving.ChatService = (*stubChatService)(nil)

func (s *stubChatService) Answer(_ context.Context, _ string, _ []domain.ChatTurn) (*domain.Answer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Answer{Text: strings.Join(s.deltas, "")}, nil
}

func (s *stubChatService) AnswerStream(_ context.Context, question string, history []domain.ChatTurn) (<-chan string, <-chan error) {
	s.questions = append(s.questions, question)
	s.histories = append(s.histories, append([]domain.ChatTurn(nil), history...))

	text := make(chan string, len(s.deltas))
	for _, d := range s.deltas {
		text <- d
	}
	close(text)
	errs := make(chan error, 1)
	errs <- s.err
	return text, errs
}

// typeText feeds one rune key per character into the app.
func typeText(app *App, text string) {
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// driveStream executes the command chain until the stream completes.
func driveStream(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		require.NotNil(t, msg)
		_, cmd = app.Update(msg)
		if _, done := msg.(streamDone); done {
			return
		}
	}
	t.Fatal("stream never completed")
}

// ask submits a question and runs its stream to completion.
func ask(t *testing.T, app *App, question string) {
	t.Helper()
	typeText(app, question)
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	driveStream(t, app, cmd)
}

func TestNew(t *testing.T) {
	app := New(&stubChatService{})

	require.NotNil(t, app)
	assert.False(t, app.Ready())
	assert.False(t, app.Streaming())
	assert.Empty(t, app.History())
}

func TestApp_WithContext(t *testing.T) {
	app := New(&stubChatService{})

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	result := app.WithContext(ctx)

	assert.Equal(t, app, result)
}

func TestApp_Init(t *testing.T) {
	app := New(&stubChatService{})

	cmd := app.Init()

	assert.NotNil(t, cmd)
}

func TestApp_Update_WindowSize(t *testing.T) {
	app := New(&stubChatService{})

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_Update_TypingFillsInput(t *testing.T) {
	app := New(&stubChatService{})
	app.SetDimensions(80, 24)

	typeText(app, "hello")

	assert.Equal(t, "hello", app.Input())
}

func TestApp_SubmitEmptyInput_NoCommand(t *testing.T) {
	app := New(&stubChatService{})
	app.SetDimensions(80, 24)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, app.Streaming())
}

func TestApp_SubmitStreamsAnswer(t *testing.T) {
	svc := &stubChatService{deltas: []string{"The answer", " is 42."}}
	app := New(svc)
	app.SetDimensions(80, 24)

	typeText(app, "what is the answer?")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, app.Streaming())
	assert.Empty(t, app.Input())

	driveStream(t, app, cmd)

	assert.False(t, app.Streaming())
	require.NoError(t, app.Err())
	require.Len(t, app.History(), 2)
	assert.Equal(t, domain.RoleUser, app.History()[0].Role)
	assert.Equal(t, "what is the answer?", app.History()[0].Content)
	assert.Equal(t, domain.RoleAssistant, app.History()[1].Role)
	assert.Equal(t, "The answer is 42.", app.History()[1].Content)
	assert.Equal(t, []string{"what is the answer?"}, svc.questions)
}

func TestApp_StreamError_KeepsHistoryAndRestoresInput(t *testing.T) {
	svc := &stubChatService{err: errors.New("completion unavailable")}
	app := New(svc)
	app.SetDimensions(80, 24)

	typeText(app, "anyone there?")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	driveStream(t, app, cmd)

	assert.False(t, app.Streaming())
	assert.Error(t, app.Err())
	assert.Empty(t, app.History())
	assert.Equal(t, "anyone there?", app.Input())
}

func TestApp_SecondQuestionCarriesHistory(t *testing.T) {
	svc := &stubChatService{deltas: []string{"Sure."}}
	app := New(svc)
	app.SetDimensions(80, 24)

	ask(t, app, "first question")
	ask(t, app, "second question")

	require.Len(t, svc.histories, 2)
	assert.Empty(t, svc.histories[0])
	require.Len(t, svc.histories[1], 2)
	assert.Equal(t, "first question", svc.histories[1][0].Content)
	assert.Equal(t, "Sure.", svc.histories[1][1].Content)
	assert.Len(t, app.History(), 4)
}

func TestApp_SubmitWhileStreaming_Ignored(t *testing.T) {
	svc := &stubChatService{deltas: []string{"slow answer"}}
	app := New(svc)
	app.SetDimensions(80, 24)

	typeText(app, "first")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, app.Streaming())

	// A second submit before the stream finishes must not open another.
	typeText(app, "second")
	_, second := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, second)
	assert.True(t, app.Streaming())
	assert.Equal(t, "second", app.Input())

	driveStream(t, app, cmd)
	assert.Equal(t, []string{"first"}, svc.questions)
}

func TestApp_ClearDropsHistory(t *testing.T) {
	svc := &stubChatService{deltas: []string{"hi"}}
	app := New(svc)
	app.SetDimensions(80, 24)

	ask(t, app, "hello")
	require.Len(t, app.History(), 2)

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Empty(t, app.History())
}

func TestApp_QuitKeys(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		app := New(&stubChatService{})
		app.SetDimensions(80, 24)

		_, cmd := app.Update(tea.KeyMsg{Type: k})

		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestApp_View_NotReady(t *testing.T) {
	app := New(&stubChatService{})

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_View_EmptyTranscriptHint(t *testing.T) {
	app := New(&stubChatService{})
	app.SetDimensions(80, 24)

	assert.Contains(t, app.View(), "Ask anything")
}

func TestApp_View_ShowsTranscript(t *testing.T) {
	svc := &stubChatService{deltas: []string{"Paris."}}
	app := New(svc)
	app.SetDimensions(80, 24)

	ask(t, app, "capital of France?")
	view := app.View()

	assert.Contains(t, view, "you")
	assert.Contains(t, view, "capital of France?")
	assert.Contains(t, view, "sitechat")
	assert.Contains(t, view, "Paris.")
	assert.Contains(t, view, "enter: send", "footer hints come from the keymap")
}
