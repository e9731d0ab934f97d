package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for name, c := range map[string]lipgloss.Color{
		"primary":    theme.Primary,
		"secondary":  theme.Secondary,
		"foreground": theme.Foreground,
		"muted":      theme.Muted,
		"success":    theme.Success,
		"warning":    theme.Warning,
		"error":      theme.Error,
		"border":     theme.Border,
		"bar":        theme.Bar,
	} {
		assert.NotEmpty(t, string(c), name)
	}
}

func TestDefaultTheme_SpeakersAreDistinct(t *testing.T) {
	theme := DefaultTheme()
	assert.NotEqual(t, theme.Primary, theme.Secondary)
	assert.NotEqual(t, theme.Error, theme.Success)
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestNewStyles_UsesTheme(t *testing.T) {
	theme := DefaultTheme()
	theme.Primary = lipgloss.Color("#000001")

	s := NewStyles(theme)

	assert.Same(t, theme, s.Theme())
	assert.Equal(t, lipgloss.Color("#000001"), s.AssistantLabel.GetForeground())
	assert.True(t, s.UserLabel.GetBold())
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.UserLabel.Render("You"), "You")
	assert.Contains(t, s.AssistantLabel.Render("Assistant"), "Assistant")
	assert.Contains(t, s.Muted.Render("note"), "note")
}
