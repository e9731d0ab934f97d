package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitechat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// newTestSettingsService isolates the service from the real environment.
func newTestSettingsService(store *memory.ConfigStore, env map[string]string) *SettingsService {
	s := NewSettingsService(store)
	s.getenv = func(key string) string { return env[key] }
	return s
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := newTestSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, defaults.LLM.Model, settings.LLM.Model)
	assert.Equal(t, defaults.Chunking, settings.Chunking)
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.Agent.MaxSteps, settings.Agent.MaxSteps)
	assert.Empty(t, settings.Embedding.APIKey)
}

func TestSettingsService_Get_FromStore(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider":            "ollama",
		"llm.provider":                  "ollama",
		"llm.model":                     "qwen2.5",
		"chunking.size":                 int64(500),
		"chunking.overlap":              int64(0),
		"chunking.splitter":             "fixed",
		"retrieval.k":                   int64(5),
		"collection.default":            "handbook",
		"agent.system_prompt":           "Answer from the handbook.",
		"embedding.requests_per_second": 2.5,
	})
	service := newTestSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	assert.Equal(t, "qwen2.5", settings.LLM.Model)
	assert.Equal(t, domain.ChunkingSettings{Splitter: domain.SplitterFixed, Size: 500, Overlap: 0}, settings.Chunking)
	assert.Equal(t, 5, settings.Retrieval.K)
	assert.Equal(t, "handbook", settings.Retrieval.Collection)
	assert.Equal(t, "Answer from the handbook.", settings.Agent.SystemPrompt)
	assert.InDelta(t, 2.5, settings.Embedding.RequestsPerSecond, 1e-9)
}

func TestSettingsService_Get_InvalidValuesFallBack(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider": "anthropic",
		"chunking.splitter":  "semantic",
	})
	settings, err := newTestSettingsService(store, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, domain.SplitterRecursive, settings.Chunking.Splitter)
}

func TestSettingsService_Get_EnvAPIKey(t *testing.T) {
	env := map[string]string{"OPENAI_API_KEY": "sk-env"}

	t.Run("fills missing keys", func(t *testing.T) {
		settings, err := newTestSettingsService(memory.NewConfigStore(), env).Get()
		require.NoError(t, err)
		assert.Equal(t, "sk-env", settings.Embedding.APIKey)
		assert.Equal(t, "sk-env", settings.LLM.APIKey)
	})

	t.Run("stored key wins", func(t *testing.T) {
		store := memory.NewConfigStore(map[string]any{"llm.api_key": "sk-file"})
		settings, err := newTestSettingsService(store, env).Get()
		require.NoError(t, err)
		assert.Equal(t, "sk-env", settings.Embedding.APIKey)
		assert.Equal(t, "sk-file", settings.LLM.APIKey)
	})

	t.Run("not used for ollama", func(t *testing.T) {
		store := memory.NewConfigStore(map[string]any{"embedding.provider": "ollama"})
		settings, err := newTestSettingsService(store, env).Get()
		require.NoError(t, err)
		assert.Empty(t, settings.Embedding.APIKey)
	})
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	env := map[string]string{"OPENAI_API_KEY": "sk-env"}
	service := newTestSettingsService(store, env)

	settings, err := service.Get()
	require.NoError(t, err)
	settings.Retrieval.K = 7
	settings.LLM.APIKey = "sk-explicit"

	require.NoError(t, service.Save(settings))

	assert.Equal(t, 7, store.GetInt("retrieval.k"))
	assert.Equal(t, "sk-explicit", store.GetString("llm.api_key"))
	_, stored := store.Get("embedding.api_key")
	assert.False(t, stored, "environment key must not be written to the config file")

	settings.Chunking.Overlap = settings.Chunking.Size
	err = service.Save(settings)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(t *testing.T, s *domain.Settings)
	}{
		{
			name: "chunk size", key: "chunking.size", value: "800",
			check: func(t *testing.T, s *domain.Settings) { assert.Equal(t, 800, s.Chunking.Size) },
		},
		{
			name: "zero overlap", key: "chunking.overlap", value: "0",
			check: func(t *testing.T, s *domain.Settings) { assert.Equal(t, 0, s.Chunking.Overlap) },
		},
		{
			name: "provider", key: "llm.provider", value: "ollama",
			check: func(t *testing.T, s *domain.Settings) { assert.Equal(t, domain.AIProviderOllama, s.LLM.Provider) },
		},
		{
			name: "collection", key: "collection.default", value: "faq",
			check: func(t *testing.T, s *domain.Settings) { assert.Equal(t, "faq", s.Retrieval.Collection) },
		},
		{
			name: "rate", key: "embedding.requests_per_second", value: "1.5",
			check: func(t *testing.T, s *domain.Settings) {
				assert.InDelta(t, 1.5, s.Embedding.RequestsPerSecond, 1e-9)
			},
		},
		{name: "overlap too large", key: "chunking.overlap", value: "1000", wantErr: true},
		{name: "not a number", key: "retrieval.k", value: "three", wantErr: true},
		{name: "zero k", key: "retrieval.k", value: "0", wantErr: true},
		{name: "unknown provider", key: "embedding.provider", value: "anthropic", wantErr: true},
		{name: "unknown splitter", key: "chunking.splitter", value: "semantic", wantErr: true},
		{name: "negative rate", key: "embedding.requests_per_second", value: "-1", wantErr: true},
		{name: "unknown key", key: "search.mode", value: "hybrid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := newTestSettingsService(store, nil)

			err := service.Set(tt.key, tt.value)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
				_, stored := store.Get(tt.key)
				assert.False(t, stored)
				return
			}
			require.NoError(t, err)

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	service := newTestSettingsService(memory.NewConfigStore(), nil)
	keys := service.Keys()

	assert.Contains(t, keys, "chunking.size")
	assert.Contains(t, keys, "retrieval.k")
	assert.Equal(t, "embedding.provider", keys[0])

	keys[0] = "mutated"
	assert.Equal(t, "embedding.provider", service.Keys()[0])
}
