// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/styles"
)

// CharLimit bounds the length of a typed question.
const CharLimit = 2000

// PromptInput wraps a bubbles textinput for typing questions.
type PromptInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewPromptInput creates a new prompt input component.
func NewPromptInput(s *styles.Styles) *PromptInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about the loaded pages, or /load <url>"
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = CharLimit
	ti.Width = 50

	return &PromptInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the input.
func (p *PromptInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (p *PromptInput) Update(msg tea.Msg) (*PromptInput, tea.Cmd) {
	var cmd tea.Cmd
	p.textinput, cmd = p.textinput.Update(msg)
	return p, cmd
}

// View renders the input.
func (p *PromptInput) View() string {
	return p.styles.InputField.Width(p.width - 2).Render(p.textinput.View())
}

// Value returns the current input value.
func (p *PromptInput) Value() string {
	return p.textinput.Value()
}

// SetValue sets the input value.
func (p *PromptInput) SetValue(value string) {
	p.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (p *PromptInput) Focus() tea.Cmd {
	return p.textinput.Focus()
}

// Blur removes focus from the input.
func (p *PromptInput) Blur() {
	p.textinput.Blur()
}

// Focused returns whether the input is focused.
func (p *PromptInput) Focused() bool {
	return p.textinput.Focused()
}

// SetWidth sets the width of the input.
func (p *PromptInput) SetWidth(width int) {
	p.width = width
	// Border, padding and prompt.
	p.textinput.Width = max(width-8, 20)
}

// Width returns the current width.
func (p *PromptInput) Width() int {
	return p.width
}

// Reset clears the input.
func (p *PromptInput) Reset() {
	p.textinput.Reset()
}

// Height is the number of rows the input occupies.
func (p *PromptInput) Height() int {
	return lipgloss.Height(p.View())
}
