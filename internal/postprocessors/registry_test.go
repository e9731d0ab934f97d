package postprocessors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

type registryMockSplitter struct {
	name string
}

func (m *registryMockSplitter) Name() string { return m.name }
func (m *registryMockSplitter) Split(_ *domain.Document) ([]domain.Chunk, error) {
	return nil, nil
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has("test"))

	var gotCfg map[string]any
	r.Register("test", func(cfg map[string]any) (driven.Splitter, error) {
		gotCfg = cfg
		return &registryMockSplitter{name: "test"}, nil
	})

	s, err := r.Build("test", map[string]any{"k": 1})
	require.NoError(t, err)
	assert.Equal(t, "test", s.Name())
	assert.Equal(t, 1, gotCfg["k"])
	assert.True(t, r.Has("test"))
}

func TestRegistry_BuildUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build("semantic", nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "semantic")
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	assert.Equal(t, []string{"fixed", "recursive"}, r.Names())
}

func TestRegistry_BuildFromSettings(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	t.Run("defaults", func(t *testing.T) {
		s, err := r.BuildFromSettings(domain.DefaultSettings().Chunking)
		require.NoError(t, err)
		assert.Equal(t, "recursive", s.Name())
	})

	t.Run("fixed", func(t *testing.T) {
		s, err := r.BuildFromSettings(domain.ChunkingSettings{Splitter: domain.SplitterFixed, Size: 10, Overlap: 2})
		require.NoError(t, err)
		assert.Equal(t, "fixed", s.Name())

		chunks, err := s.Split(&domain.Document{Content: "abcdefghijklmnop"})
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "abcdefghij", chunks[0].Text)
		assert.Equal(t, "ijklmnop", chunks[1].Text)
	})

	t.Run("invalid overlap", func(t *testing.T) {
		_, err := r.BuildFromSettings(domain.ChunkingSettings{Splitter: domain.SplitterRecursive, Size: 10, Overlap: 10})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestGetIntFromConfig(t *testing.T) {
	cfg := map[string]any{"a": 1, "b": int64(2), "c": float64(3), "d": "4"}

	v, ok := getIntFromConfig(cfg, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = getIntFromConfig(cfg, "b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = getIntFromConfig(cfg, "c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = getIntFromConfig(cfg, "d")
	assert.False(t, ok)

	_, ok = getIntFromConfig(nil, "a")
	assert.False(t, ok)
}
