// Package collections provides the collection management view for the TUI.
package collections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driving"
)

var (
	errNoRetrievalService = errors.New("retrieval service not available")
	errNoIngestService    = errors.New("ingest service not available")
)

// View lists stored collections and lets the user drop them.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	retrieval driving.RetrievalService
	ingest    driving.IngestService
	ctx       context.Context

	collections []domain.CollectionInfo
	selected    int
	width       int
	height      int
	ready       bool
	err         error
	loading     bool
}

// NewView creates a new collections view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	retrieval driving.RetrievalService,
	ingest driving.IngestService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keymap:    km,
		retrieval: retrieval,
		ingest:    ingest,
		ctx:       context.Background(),
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the collections.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadCollections()
}

// loadCollections returns a command that lists collections.
func (v *View) loadCollections() tea.Cmd {
	return func() tea.Msg {
		if v.retrieval == nil {
			return messages.CollectionsLoaded{Err: errNoRetrievalService}
		}
		infos, err := v.retrieval.Collections(v.ctx)
		return messages.CollectionsLoaded{Collections: infos, Err: err}
	}
}

// dropCollection returns a command that deletes a collection.
func (v *View) dropCollection(name string) tea.Cmd {
	return func() tea.Msg {
		if v.ingest == nil {
			return messages.CollectionDropped{Name: name, Err: errNoIngestService}
		}
		return messages.CollectionDropped{Name: name, Err: v.ingest.Drop(v.ctx, name)}
	}
}

// Update handles messages for the collections view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.CollectionsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.collections = msg.Collections
		v.err = nil
		if v.selected >= len(v.collections) {
			v.selected = max(len(v.collections)-1, 0)
		}
		return v, nil

	case messages.CollectionDropped:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.loading = true
		return v, v.loadCollections()
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(msg, v.keymap.Down):
		if v.selected < len(v.collections)-1 {
			v.selected++
		}
	case key.Matches(msg, v.keymap.Delete):
		if v.selected < len(v.collections) {
			return v, v.dropCollection(v.collections[v.selected].Name)
		}
	case key.Matches(msg, v.keymap.Reload):
		v.loading = true
		return v, v.loadCollections()
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	}
	return v, nil
}

// View renders the collections view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Collections"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading collections..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.collections) == 0:
		b.WriteString(v.styles.Muted.Render("No collections yet. Use /load in the chat to add one."))
	default:
		for i := range v.collections {
			b.WriteString(v.renderCollection(i, &v.collections[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

// renderCollection renders a single collection line.
func (v *View) renderCollection(index int, c *domain.CollectionInfo) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := c.Name
	maxNameLen := max(v.width-40, 10)
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}
	detail := fmt.Sprintf("%6d entries  %s", c.Count, c.EmbeddingModel)

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-20s %s", indicator, name, detail))
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-20s ", indicator, name)) + v.styles.Muted.Render(detail)
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	bindings := v.keymap.CollectionsHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return v.styles.Help.Render(strings.Join(hints, "  "))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Collections returns the loaded collections.
func (v *View) Collections() []domain.CollectionInfo {
	return v.collections
}

// SelectedIndex returns the selected collection index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Loading reports whether a load is in progress.
func (v *View) Loading() bool {
	return v.loading
}
