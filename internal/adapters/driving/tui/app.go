// Package tui implements the interactive chat session. It follows the
// Elm architecture: one model, messages for every state change, and
// commands for the blocking work of opening and draining answer
// streams.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sitechat-io/sitechat-cli/internal/adapters/driving/tui/keymap"
	"github.com/sitechat-io/sitechat-cli/internal/adapters/driving/tui/styles"
	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driving"
)

// streamStarted carries the channels of a freshly opened answer stream.
type streamStarted struct {
	deltas <-chan string
	errs   <-chan error
}

// streamDelta is one fragment of the in-flight answer.
type streamDelta struct {
	text string
}

// streamDone marks the end of the stream. err is nil on clean
// completion.
type streamDone struct {
	err error
}

// App is the chat session model. It implements tea.Model for use with
// Bubbletea.
type App struct {
	chat driving.ChatService
	ctx  context.Context

	styles *styles.Styles
	keys   *keymap.KeyMap

	input    textinput.Model
	viewport viewport.Model

	// history holds completed exchanges, oldest first. It doubles as
	// the conversation context for the next question.
	history []domain.ChatTurn

	// pending is the question whose answer is streaming in.
	pending string

	// partial accumulates the streamed answer.
	partial strings.Builder

	// deltas and errs are the live stream channels.
	deltas <-chan string
	errs   <-chan error

	streaming bool
	err       error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// New creates the chat application over the given chat service.
func New(chat driving.ChatService) *App {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your websites..."
	ti.CharLimit = 1024
	ti.Focus()

	return &App{
		chat:     chat,
		ctx:      context.Background(),
		styles:   styles.DefaultStyles(),
		keys:     keymap.DefaultKeyMap(),
		input:    ti,
		viewport: viewport.New(0, 0),
	}
}

// WithContext sets the context used for answer streams.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("sitechat"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case streamStarted:
		a.deltas = msg.deltas
		a.errs = msg.errs
		return a, readDelta(msg.deltas, msg.errs)

	case streamDelta:
		a.partial.WriteString(msg.text)
		a.refreshTranscript()
		return a, readDelta(a.deltas, a.errs)

	case streamDone:
		a.finishStream(msg.err)
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKey routes keys: quit and submit first, scroll keys to the
// transcript viewport, everything else to the input.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Submit):
		return a, a.submit()

	case key.Matches(msg, a.keys.ScrollUp), key.Matches(msg, a.keys.ScrollDown):
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	case key.Matches(msg, a.keys.Clear):
		if !a.streaming {
			a.history = nil
			a.err = nil
			a.refreshTranscript()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit opens the answer stream for the typed question. Opening
// performs retrieval, so it runs as a command instead of blocking the
// update loop.
func (a *App) submit() tea.Cmd {
	if a.streaming {
		return nil
	}
	question := strings.TrimSpace(a.input.Value())
	if question == "" {
		return nil
	}

	a.pending = question
	a.partial.Reset()
	a.streaming = true
	a.err = nil
	a.input.SetValue("")
	a.refreshTranscript()

	return openStream(a.ctx, a.chat, question, a.history)
}

// openStream asks the chat service for an answer stream.
func openStream(ctx context.Context, chat driving.ChatService, question string, history []domain.ChatTurn) tea.Cmd {
	return func() tea.Msg {
		deltas, errs := chat.AnswerStream(ctx, question, history)
		return streamStarted{deltas: deltas, errs: errs}
	}
}

// readDelta consumes one stream fragment. The command re-issues itself
// from Update until the text channel closes, then collects the final
// error.
func readDelta(deltas <-chan string, errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		text, ok := <-deltas
		if !ok {
			return streamDone{err: <-errs}
		}
		return streamDelta{text: text}
	}
}

// finishStream folds the completed exchange into the history. A failed
// stream keeps the history untouched and puts the question back in the
// input so a retry is one keypress away.
func (a *App) finishStream(err error) {
	a.streaming = false
	a.deltas = nil
	a.errs = nil

	if err != nil {
		a.err = err
		a.input.SetValue(a.pending)
	} else {
		a.history = append(a.history,
			domain.ChatTurn{Role: domain.RoleUser, Content: a.pending},
			domain.ChatTurn{Role: domain.RoleAssistant, Content: a.partial.String()},
		)
	}

	a.pending = ""
	a.partial.Reset()
	a.refreshTranscript()
}

// refreshTranscript re-renders the viewport content and keeps the
// latest text visible.
func (a *App) refreshTranscript() {
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

// renderTranscript renders the completed turns plus the in-flight
// exchange, wrapped to the viewport width.
func (a *App) renderTranscript() string {
	width := a.viewport.Width
	if width <= 0 {
		width = 80
	}
	body := a.styles.Normal.Width(width)

	var sections []string
	for _, turn := range a.history {
		label := a.styles.AssistantLabel.Render("sitechat")
		if turn.Role == domain.RoleUser {
			label = a.styles.UserLabel.Render("you")
		}
		sections = append(sections, label, body.Render(turn.Content), "")
	}

	if a.pending != "" {
		sections = append(sections,
			a.styles.UserLabel.Render("you"), body.Render(a.pending), "",
			a.styles.AssistantLabel.Render("sitechat"))
		if answer := a.partial.String(); answer != "" {
			sections = append(sections, body.Render(answer))
		} else {
			sections = append(sections, a.styles.Muted.Render("thinking..."))
		}
	}

	if a.err != nil {
		sections = append(sections, a.styles.Error.Render("Error: "+a.err.Error()))
	}

	if len(sections) == 0 {
		return a.styles.Muted.Render("Ask anything about your ingested websites.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render("SiteChat"),
		a.viewport.View(),
		a.styles.InputField.Render(a.input.View()),
		a.statusLine(),
	)
}

// statusLine renders the footer: stream state plus key hints.
func (a *App) statusLine() string {
	state := a.styles.Success.Render("ready")
	if a.streaming {
		state = a.styles.Warning.Render("streaming...")
	}

	bindings := a.keys.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return state + "  " + a.styles.Help.Render(strings.Join(hints, " | "))
}

// SetDimensions sets the terminal dimensions and re-flows the layout.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	frameWidth, frameHeight := a.styles.InputField.GetFrameSize()

	inputWidth := width - frameWidth - len(a.input.Prompt)
	if inputWidth < 20 {
		inputWidth = 20
	}
	a.input.Width = inputWidth

	// Header line, input box with its frame, status line.
	reserved := 1 + frameHeight + 1 + 1
	viewportHeight := height - reserved
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	a.viewport.Width = width
	a.viewport.Height = viewportHeight
	a.refreshTranscript()
}

// Run starts the chat application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// History returns the completed exchanges.
func (a *App) History() []domain.ChatTurn {
	return a.history
}

// Streaming reports whether an answer is currently arriving.
func (a *App) Streaming() bool {
	return a.streaming
}

// Input returns the current input value.
func (a *App) Input() string {
	return a.input.Value()
}

// Err returns the last stream error.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether the first window size has arrived.
func (a *App) Ready() bool {
	return a.ready
}
