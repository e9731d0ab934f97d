package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui/styles"
)

func TestNewPromptInput(t *testing.T) {
	in := NewPromptInput(nil)

	require.NotNil(t, in)
	assert.True(t, in.Focused())
	assert.Empty(t, in.Value())
	assert.Equal(t, 50, in.Width())
	assert.NotNil(t, in.Init())
}

func TestPromptInput_Typing(t *testing.T) {
	in := NewPromptInput(styles.DefaultStyles())

	for _, r := range "hello" {
		in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "hello", in.Value())
	assert.Contains(t, in.View(), "hello")
}

func TestPromptInput_SetValueAndReset(t *testing.T) {
	in := NewPromptInput(nil)

	in.SetValue("what is the pricing?")
	assert.Equal(t, "what is the pricing?", in.Value())

	in.Reset()
	assert.Empty(t, in.Value())
}

func TestPromptInput_FocusBlur(t *testing.T) {
	in := NewPromptInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestPromptInput_SetWidth(t *testing.T) {
	in := NewPromptInput(nil)

	in.SetWidth(120)
	assert.Equal(t, 120, in.Width())

	in.SetWidth(5)
	assert.Equal(t, 5, in.Width())
	assert.NotPanics(t, func() { _ = in.View() })
}

func TestPromptInput_Height(t *testing.T) {
	in := NewPromptInput(nil)
	in.SetWidth(80)

	// One line of text plus the rounded border.
	assert.Equal(t, 3, in.Height())
}
