// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driving"
)

// streamBuffer is how many events the agent goroutine can queue ahead of
// the UI.
const streamBuffer = 64

// Config holds the services and session settings for the chat view.
type Config struct {
	Agent        driving.Agent
	Ingest       driving.IngestService
	Collection   string
	Locator      string
	SystemPrompt string
	Model        string
}

// View is the chat view: a transcript above a prompt input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.PromptInput
	transcript *transcript.Transcript
	statusbar  *status.Bar

	agent      driving.Agent
	ingest     driving.IngestService
	collection string
	locator    string
	conv       *domain.Conversation
	ctx        context.Context

	stream    chan tea.Msg
	cancel    context.CancelFunc
	streaming bool

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, cfg Config) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}

	bar := status.NewBar(s, km)
	bar.SetCollection(cfg.Collection)
	bar.SetModel(cfg.Model)

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewPromptInput(s),
		transcript: transcript.New(s),
		statusbar:  bar,
		agent:      cfg.Agent,
		ingest:     cfg.Ingest,
		collection: cfg.Collection,
		locator:    cfg.Locator,
		conv:       domain.NewConversation(cfg.SystemPrompt),
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the parent context for agent and ingest calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view and loads the startup locator, if any.
func (v *View) Init() tea.Cmd {
	cmds := []tea.Cmd{v.input.Init()}
	if v.locator != "" {
		cmds = append(cmds, func() tea.Msg {
			return messages.IngestRequested{Locator: v.locator}
		})
	}
	return tea.Batch(cmds...)
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case messages.AnswerDelta:
		v.transcript.AppendDelta(msg.Text)
		return v, waitForEvent(v.stream)

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.IngestRequested:
		return v, v.load(msg.Locator)

	case messages.IngestCompleted:
		v.handleIngestCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.showError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.streaming {
		if key.Matches(msg, v.keymap.Back) && v.cancel != nil {
			v.cancel()
		}
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keymap.Send):
		return v, v.submit(strings.TrimSpace(v.input.Value()))
	case key.Matches(msg, v.keymap.NewChat):
		v.NewChat()
		return v, nil
	case key.Matches(msg, v.keymap.ScrollUp), key.Matches(msg, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit dispatches typed text as a slash command or a question.
func (v *View) submit(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	v.input.Reset()

	if !strings.HasPrefix(text, "/") {
		return v.ask(text)
	}

	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/load":
		if arg == "" {
			v.showError(fmt.Errorf("%w: usage /load <url or path>", domain.ErrInvalidInput))
			return nil
		}
		return v.load(arg)
	case "/new":
		v.NewChat()
		return nil
	default:
		v.showError(fmt.Errorf("%w: %s", ErrUnknownCommand, name))
		return nil
	}
}

// ask starts the agent in a goroutine and streams its events back through
// a channel, one message per Cmd.
func (v *View) ask(question string) tea.Cmd {
	if v.agent == nil {
		v.showError(ErrNoAgent)
		return nil
	}

	v.transcript.Append(transcript.KindUser, question)
	v.statusbar.SetState(status.StateStreaming)
	v.statusbar.SetMessage("")
	v.input.Blur()
	v.streaming = true

	ctx, cancel := context.WithCancel(v.ctx)
	ch := make(chan tea.Msg, streamBuffer)
	v.cancel = cancel
	v.stream = ch

	agent, conv := v.agent, v.conv
	go func() {
		defer close(ch)
		answer, err := agent.Ask(ctx, conv, question, func(delta string) {
			ch <- messages.AnswerDelta{Text: delta}
		})
		ch <- messages.AnswerCompleted{Answer: answer, Err: err}
	}()

	return waitForEvent(ch)
}

// waitForEvent returns a Cmd that delivers the next streamed event.
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// handleAnswerCompleted ends a streamed answer.
func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	if v.cancel != nil {
		v.cancel()
	}
	v.cancel = nil
	v.stream = nil
	v.streaming = false
	v.input.Focus()

	switch {
	case errors.Is(msg.Err, context.Canceled):
		v.transcript.Append(transcript.KindNote, "Stopped.")
		v.statusbar.Clear()
	case msg.Err != nil:
		v.showError(msg.Err)
	default:
		v.transcript.ReplaceLastAssistant(msg.Answer)
		v.statusbar.Clear()
	}
}

// load returns a Cmd that ingests locator into the session collection.
func (v *View) load(locator string) tea.Cmd {
	if v.ingest == nil {
		v.showError(ErrNoIngestService)
		return nil
	}

	v.statusbar.SetState(status.StateLoading)
	v.statusbar.SetMessage(locator)

	ingest, collection, ctx := v.ingest, v.collection, v.ctx
	return func() tea.Msg {
		outcome, err := ingest.Load(ctx, collection, locator)
		return messages.IngestCompleted{
			Locator:    locator,
			Collection: collection,
			Outcome:    outcome,
			Err:        err,
		}
	}
}

// handleIngestCompleted reports a load outcome in the transcript.
func (v *View) handleIngestCompleted(msg messages.IngestCompleted) {
	if msg.Err != nil {
		v.showError(fmt.Errorf("load %s: %w", msg.Locator, msg.Err))
		return
	}
	v.transcript.Append(transcript.KindNote, fmt.Sprintf("%s: %s", msg.Locator, msg.Outcome))
	v.statusbar.Clear()
	v.statusbar.SetMessage(msg.Outcome.String())
}

func (v *View) showError(err error) {
	if err == nil {
		return
	}
	v.transcript.Append(transcript.KindError, err.Error())
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// NewChat clears the conversation, keeping the system prompt.
func (v *View) NewChat() {
	v.conv.Reset()
	v.transcript.Clear()
	v.input.Reset()
	v.statusbar.Clear()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("sitechat"),
		"",
		v.transcript.View(),
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	// Header, blank line and status bar.
	v.transcript.SetSize(width, height-v.input.Height()-3)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Streaming reports whether an answer is in progress.
func (v *View) Streaming() bool {
	return v.streaming
}

// Conversation returns the session conversation.
func (v *View) Conversation() *domain.Conversation {
	return v.conv
}

// Transcript returns the rendered transcript entries.
func (v *View) Transcript() []transcript.Entry {
	return v.transcript.Entries()
}

// Collection returns the session collection.
func (v *View) Collection() string {
	return v.collection
}

// SetInput sets the prompt text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}

// Input returns the prompt text.
func (v *View) Input() string {
	return v.input.Value()
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

// Stop cancels an in-progress answer.
func (v *View) Stop() {
	if v.cancel != nil {
		v.cancel()
	}
}
