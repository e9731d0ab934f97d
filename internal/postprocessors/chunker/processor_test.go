package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p, err := New()
		require.NoError(t, err)
		assert.Equal(t, DefaultChunkSize, p.ChunkSize())
		assert.Equal(t, DefaultChunkOverlap, p.Overlap())
		assert.Equal(t, "recursive", p.Name())
	})

	t.Run("custom values", func(t *testing.T) {
		p, err := New(WithChunkSize(500), WithOverlap(100))
		require.NoError(t, err)
		assert.Equal(t, 500, p.ChunkSize())
		assert.Equal(t, 100, p.Overlap())
	})

	t.Run("fixed windows", func(t *testing.T) {
		p, err := New(WithFixedWindows())
		require.NoError(t, err)
		assert.Equal(t, "fixed", p.Name())
	})

	invalid := []struct {
		name string
		opts []Option
	}{
		{"zero chunk size", []Option{WithChunkSize(0)}},
		{"negative chunk size", []Option{WithChunkSize(-5)}},
		{"negative overlap", []Option{WithOverlap(-1)}},
		{"overlap equals size", []Option{WithChunkSize(100), WithOverlap(100)}},
		{"overlap exceeds size", []Option{WithChunkSize(100), WithOverlap(150)}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.opts...)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
}

func TestSplit_EmptyDocument(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	for _, content := range []string{"", "   ", "\n\n\t "} {
		chunks, err := p.Split(&domain.Document{Locator: "https://example.com", Content: content})
		assert.Nil(t, chunks)

		var empty *domain.EmptyDocumentError
		require.True(t, errors.As(err, &empty))
		assert.Equal(t, "https://example.com", empty.Locator)
	}
}

func TestSplit_NilDocument(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	_, err = p.Split(nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSplit_ShortText(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	chunks, err := p.Split(&domain.Document{Locator: "doc", Content: "Hello world."})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hello world.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 12, chunks[0].End)
	assert.Equal(t, "doc", chunks[0].Locator)
	assert.NotEmpty(t, chunks[0].ID)
}

func TestSplit_ExactlyChunkSize(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	chunks, err := p.Split(&domain.Document{Content: strings.Repeat("A", DefaultChunkSize)})
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestSplit_UnbrokenRun(t *testing.T) {
	for _, opt := range []Option{WithFixedWindows(), WithChunkSize(DefaultChunkSize)} {
		p, err := New(opt)
		require.NoError(t, err)

		chunks, err := p.Split(&domain.Document{Content: strings.Repeat("A", 2000)})
		require.NoError(t, err)
		require.Len(t, chunks, 3, p.Name())

		assert.Equal(t, [2]int{0, 1000}, [2]int{chunks[0].Start, chunks[0].End})
		assert.Equal(t, [2]int{800, 1800}, [2]int{chunks[1].Start, chunks[1].End})
		assert.Equal(t, [2]int{1600, 2000}, [2]int{chunks[2].Start, chunks[2].End})
		assert.Len(t, chunks[2].Text, 400)
	}
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	p, err := New(WithChunkSize(100), WithOverlap(10))
	require.NoError(t, err)

	first := strings.Repeat("word ", 12) + "end."
	second := strings.Repeat("more ", 12) + "done."
	content := first + "\n\n" + second

	chunks, err := p.Split(&domain.Document{Content: content})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, first+"\n\n", chunks[0].Text)
}

func TestSplit_PrefersSentenceOverWord(t *testing.T) {
	p, err := New(WithChunkSize(60), WithOverlap(5))
	require.NoError(t, err)

	content := "The first sentence is here. The second one keeps going on and on without end"
	chunks, err := p.Split(&domain.Document{Content: content})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "The first sentence is here. ", chunks[0].Text)
}

func TestSplit_NextChunkStartsOnWord(t *testing.T) {
	p, err := New(WithChunkSize(50), WithOverlap(12))
	require.NoError(t, err)

	content := strings.Repeat("alpha beta gamma delta ", 10)
	chunks, err := p.Split(&domain.Document{Content: content})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	text := []rune(content)
	for _, c := range chunks[1:] {
		assert.True(t, c.Start == 0 || text[c.Start-1] == ' ', "chunk %d starts mid-word", c.Index)
	}
}

func TestSplit_Invariants(t *testing.T) {
	texts := map[string]string{
		"prose": strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit. ", 60) +
			"\n\n" + strings.Repeat("Sed do eiusmod tempor; incididunt ut labore! Et dolore? ", 40),
		"lines":   strings.Repeat("a short line\n", 300),
		"unicode": strings.Repeat("héllo wörld ünïcödé 日本語のテキスト ", 80),
		"mixed":   strings.Repeat("x", 1500) + " " + strings.Repeat("y z ", 400),
	}

	configs := []struct {
		size    int
		overlap int
		fixed   bool
	}{
		{1000, 200, false},
		{1000, 200, true},
		{300, 0, false},
		{120, 119, false},
		{50, 10, true},
	}

	for name, content := range texts {
		for _, cfg := range configs {
			opts := []Option{WithChunkSize(cfg.size), WithOverlap(cfg.overlap)}
			if cfg.fixed {
				opts = append(opts, WithFixedWindows())
			}
			p, err := New(opts...)
			require.NoError(t, err)

			chunks, err := p.Split(&domain.Document{Locator: "doc", Content: content})
			require.NoError(t, err, name)
			assertChunkInvariants(t, content, chunks, cfg.size, cfg.overlap)
		}
	}
}

// assertChunkInvariants checks bounded size, bounded overlap, ordering and
// that the chunks rebuild the original text exactly.
func assertChunkInvariants(t *testing.T, content string, chunks []domain.Chunk, size, overlap int) {
	t.Helper()
	text := []rune(content)

	require.NotEmpty(t, chunks)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len(text), chunks[len(chunks)-1].End)

	var rebuilt strings.Builder
	covered := 0
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.LessOrEqual(t, c.Len(), size)
		assert.Greater(t, c.Len(), 0)
		assert.Equal(t, string(text[c.Start:c.End]), c.Text)

		if i > 0 {
			prev := chunks[i-1]
			assert.Greater(t, c.Start, prev.Start)
			assert.Greater(t, c.End, prev.End)
			assert.LessOrEqual(t, c.Start, prev.End)
			assert.LessOrEqual(t, prev.End-c.Start, overlap)
		}

		rebuilt.WriteString(string(text[covered:c.End]))
		covered = c.End
	}
	assert.Equal(t, content, rebuilt.String())
}
