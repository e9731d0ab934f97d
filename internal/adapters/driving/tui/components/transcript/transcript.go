// Package transcript provides the scrolling conversation display for the TUI.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/styles"
)

// Kind identifies who or what produced a transcript entry.
type Kind int

const (
	// KindUser is a question typed by the user.
	KindUser Kind = iota
	// KindAssistant is an answer from the agent.
	KindAssistant
	// KindNote is an informational line such as an ingest outcome.
	KindNote
	// KindError is a failure shown inline.
	KindError
)

// Entry is one block of the transcript.
type Entry struct {
	Kind Kind
	Text string
}

// Transcript renders the conversation in a scrollable viewport.
type Transcript struct {
	entries  []Entry
	viewport viewport.Model
	styles   *styles.Styles
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	t := &Transcript{
		viewport: viewport.New(80, 20),
		styles:   s,
	}
	t.refresh()
	return t
}

// Init initialises the transcript.
func (t *Transcript) Init() tea.Cmd {
	return nil
}

// Update forwards scroll keys and mouse events to the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.viewport.View()
}

// Append adds an entry and scrolls to the bottom.
func (t *Transcript) Append(kind Kind, text string) {
	t.entries = append(t.entries, Entry{Kind: kind, Text: text})
	t.refresh()
}

// AppendDelta extends the last assistant entry, starting a new one when the
// last entry belongs to someone else.
func (t *Transcript) AppendDelta(text string) {
	if n := len(t.entries); n > 0 && t.entries[n-1].Kind == KindAssistant {
		t.entries[n-1].Text += text
	} else {
		t.entries = append(t.entries, Entry{Kind: KindAssistant, Text: text})
	}
	t.refresh()
}

// ReplaceLastAssistant sets the text of the trailing assistant entry, or
// appends one. Used when the final answer differs from the streamed deltas.
func (t *Transcript) ReplaceLastAssistant(text string) {
	if n := len(t.entries); n > 0 && t.entries[n-1].Kind == KindAssistant {
		t.entries[n-1].Text = text
		t.refresh()
		return
	}
	t.Append(KindAssistant, text)
}

// Entries returns a copy of the transcript entries.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Clear removes every entry.
func (t *Transcript) Clear() {
	t.entries = nil
	t.refresh()
}

// SetSize sets the viewport dimensions.
func (t *Transcript) SetSize(width, height int) {
	t.viewport.Width = max(width, 20)
	t.viewport.Height = max(height, 3)
	t.refresh()
}

// Width returns the viewport width.
func (t *Transcript) Width() int {
	return t.viewport.Width
}

// Height returns the viewport height.
func (t *Transcript) Height() int {
	return t.viewport.Height
}

// AtBottom reports whether the viewport shows the last line.
func (t *Transcript) AtBottom() bool {
	return t.viewport.AtBottom()
}

func (t *Transcript) refresh() {
	t.viewport.SetContent(t.render())
	t.viewport.GotoBottom()
}

func (t *Transcript) render() string {
	if len(t.entries) == 0 {
		return t.styles.Muted.Render("Ask a question, or /load <url> to load a page.")
	}

	wrap := lipgloss.NewStyle().Width(max(t.viewport.Width-2, 10))
	blocks := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		blocks = append(blocks, t.renderEntry(e, wrap))
	}
	return strings.Join(blocks, "\n\n")
}

func (t *Transcript) renderEntry(e Entry, wrap lipgloss.Style) string {
	switch e.Kind {
	case KindUser:
		return t.styles.UserLabel.Render("You") + "\n" + wrap.Render(e.Text)
	case KindAssistant:
		return t.styles.AssistantLabel.Render("Assistant") + "\n" + wrap.Render(e.Text)
	case KindError:
		return t.styles.Error.Render(wrap.Render("Error: " + e.Text))
	default:
		return t.styles.Muted.Render(wrap.Render(e.Text))
	}
}
