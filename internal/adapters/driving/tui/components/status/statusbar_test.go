package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 80, bar.Width())
	assert.Nil(t, bar.Init())
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		contains []string
		excludes []string
	}{
		{"ready", StateReady, "", []string{"Ready", "[docs]", "gpt-4o", "enter: send"}, nil},
		{"ready with notice", StateReady, "Ingested 12 chunks", []string{"Ingested 12 chunks"}, []string{"Ready"}},
		{"loading", StateLoading, "https://example.com", []string{"Loading https://example.com..."}, nil},
		{"streaming", StateStreaming, "", []string{"Thinking...", "esc: back/stop"}, []string{"enter: send"}},
		{"error", StateError, "boom", []string{"Error: boom"}, nil},
		{"help", StateHelp, "", []string{"Help"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			bar.SetCollection("docs")
			bar.SetModel("gpt-4o")
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
			for _, not := range tt.excludes {
				assert.NotContains(t, view, not)
			}
		})
	}
}

func TestBar_ViewNarrow(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(10)
	bar.SetState(StateError)
	bar.SetMessage(errors.New("a very long error message").Error())

	assert.NotPanics(t, func() { _ = bar.View() })
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
}

func TestBar_Update(t *testing.T) {
	bar := NewBar(nil, nil)
	updated, cmd := bar.Update(nil)
	assert.Same(t, bar, updated)
	assert.Nil(t, cmd)
}
