package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/views/collections"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the global keybindings.
	keymap *keymap.KeyMap

	// help renders the keybinding reference.
	help help.Model

	// chatView is the conversation view.
	chatView *chat.View

	// collectionsView lists stored collections.
	collectionsView *collections.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: s,
		keymap: km,
		help:   help.New(),
		chatView: chat.NewView(s, km, chat.Config{
			Agent:        ports.Agent,
			Ingest:       ports.Ingest,
			Collection:   ports.Collection,
			Locator:      ports.Locator,
			SystemPrompt: ports.SystemPrompt,
			Model:        ports.Model,
		}),
		collectionsView: collections.NewView(s, km, ports.Retrieval, ports.Ingest),
		currentView:     messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.collectionsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("sitechat"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.AnswerDelta, messages.AnswerCompleted,
		messages.IngestRequested, messages.IngestCompleted:
		// Streams keep flowing to the chat even while another view is shown.
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.CollectionsLoaded, messages.CollectionDropped:
		a.collectionsView, cmd = a.collectionsView.Update(msg)
		a.err = a.collectionsView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.Quit:
		a.chatView.Stop()
		return a, tea.Quit
	}

	// Forward other messages (cursor blink, mouse) to the active view
	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewCollections:
		a.collectionsView, cmd = a.collectionsView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}
	return a, cmd
}

// handleKeyMsg applies global bindings, then forwards to the active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keymap.Quit) {
		a.chatView.Stop()
		return a, tea.Quit
	}

	// The chat owns the keyboard while an answer streams.
	if !a.chatView.Streaming() {
		switch {
		case key.Matches(msg, a.keymap.Help):
			return a, a.switchTo(messages.ViewHelp)
		case key.Matches(msg, a.keymap.SwitchView):
			if a.currentView == messages.ViewCollections {
				return a, a.switchTo(messages.ViewChat)
			}
			return a, a.switchTo(messages.ViewCollections)
		}
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewCollections:
		a.collectionsView, cmd = a.collectionsView.Update(msg)
	case messages.ViewHelp:
		if key.Matches(msg, a.keymap.Back) {
			return a, a.switchTo(messages.ViewChat)
		}
	}
	return a, cmd
}

// switchTo activates a view, initialising it when needed.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	if view == messages.ViewCollections {
		return a.collectionsView.Init()
	}
	return nil
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewCollections:
		return a.collectionsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.chatView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + "\n\n" +
		a.help.FullHelpView(a.keymap.FullHelp()) + "\n\n" +
		a.styles.Help.Render("Chat commands:\n  /load <url or path>  load a page into an empty collection\n  /new                 start a new conversation") +
		"\n\n" + a.styles.Help.Render("[esc] back to chat")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(a.ctx),
	)
	_, err := p.Run()
	a.chatView.Stop()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.chatView.SetDimensions(width, height)
	a.collectionsView.SetDimensions(width, height)
}
