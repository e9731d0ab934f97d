package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDocument_Fields tests Document structure fields
func TestDocument_Fields(t *testing.T) {
	now := time.Now()

	doc := Document{
		Locator:   "https://example.com/about",
		Title:     "About",
		Content:   "We build things.",
		MIMEType:  "text/html",
		FetchedAt: now,
	}

	assert.Equal(t, "https://example.com/about", doc.Locator)
	assert.Equal(t, "About", doc.Title)
	assert.Equal(t, "We build things.", doc.Content)
	assert.Equal(t, "text/html", doc.MIMEType)
	assert.Equal(t, now, doc.FetchedAt)
}

func TestDocument_ZeroValue(t *testing.T) {
	var doc Document

	assert.Empty(t, doc.Content)
	assert.True(t, doc.FetchedAt.IsZero())
}

func TestChunk_Len(t *testing.T) {
	tests := []struct {
		name  string
		chunk Chunk
		want  int
	}{
		{"empty", Chunk{}, 0},
		{"first window", Chunk{Start: 0, End: 1000}, 1000},
		{"overlapping window", Chunk{Start: 800, End: 1250}, 450},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.chunk.Len())
		})
	}
}

func TestChunk_LenCountsRunes(t *testing.T) {
	text := "héllo wörld"
	chunk := Chunk{Text: text, Start: 5, End: 5 + len([]rune(text))}

	assert.Equal(t, 11, chunk.Len())
	assert.NotEqual(t, len(text), chunk.Len())
}

func TestEntry_Fields(t *testing.T) {
	entry := Entry{
		Chunk:     Chunk{ID: "c1", Locator: "notes.txt", Index: 2, Text: "hello"},
		Embedding: []float32{0.1, 0.2, 0.3},
	}

	assert.Equal(t, "c1", entry.Chunk.ID)
	assert.Equal(t, 2, entry.Chunk.Index)
	assert.Len(t, entry.Embedding, 3)
}
