package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
	"github.com/custodia-labs/sitechat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedRate      = "embedding.requests_per_second"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keySplitter       = "chunking.splitter"
	keyChunkSize      = "chunking.size"
	keyChunkOverlap   = "chunking.overlap"
	keyRetrievalK     = "retrieval.k"
	keyCollection     = "collection.default"
	keyMaxSteps       = "agent.max_steps"
	keySystemPrompt   = "agent.system_prompt"
	envOpenAIAPIKey   = "OPENAI_API_KEY"
	defaultOllamaHost = "http://localhost:11434"
)

// settingKeys lists every recognised key in display order.
var settingKeys = []string{
	keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey, keyEmbedRate,
	keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey,
	keySplitter, keyChunkSize, keyChunkOverlap,
	keyRetrievalK, keyCollection,
	keyMaxSteps, keySystemPrompt,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// An OpenAI provider without a stored key falls back to OPENAI_API_KEY.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.getFloat(keyEmbedRate, defaults.Embedding.RequestsPerSecond),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Chunking: domain.ChunkingSettings{
			Splitter: s.getSplitter(defaults.Chunking.Splitter),
			Size:     s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap:  s.getIntAllowZero(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			K:          s.getInt(keyRetrievalK, defaults.Retrieval.K),
			Collection: s.getString(keyCollection, defaults.Retrieval.Collection),
		},
		Agent: domain.AgentSettings{
			MaxSteps:     s.getInt(keyMaxSteps, defaults.Agent.MaxSteps),
			SystemPrompt: s.getString(keySystemPrompt, defaults.Agent.SystemPrompt),
		},
	}

	// Model defaults follow the provider.
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaHost
	}
	if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaHost
	}

	if env := s.getenv(envOpenAIAPIKey); env != "" {
		if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.APIKey == "" {
			settings.Embedding.APIKey = env
		}
		if settings.LLM.Provider == domain.AIProviderOpenAI && settings.LLM.APIKey == "" {
			settings.LLM.APIKey = env
		}
	}

	return settings, nil
}

// Save persists application settings.
// API keys are only written when set so an environment key is never copied
// to disk by accident.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key string
		val any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedRate, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keySplitter, string(settings.Chunking.Splitter)},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyRetrievalK, settings.Retrieval.K},
		{keyCollection, settings.Retrieval.Collection},
		{keyMaxSteps, settings.Agent.MaxSteps},
		{keySystemPrompt, settings.Agent.SystemPrompt},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != s.getenv(envOpenAIAPIKey) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.getenv(envOpenAIAPIKey) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

// Set updates a single setting by key. The value is parsed to the key's
// type and the resulting settings are validated before anything is stored.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var stored any = value
	switch key {
	case keyEmbedProvider, keyLLMProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
		if key == keyEmbedProvider {
			settings.Embedding.Provider = p
		} else {
			settings.LLM.Provider = p
		}
	case keySplitter:
		settings.Chunking.Splitter = domain.SplitterKind(value)
	case keyChunkSize, keyChunkOverlap, keyRetrievalK, keyMaxSteps:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %q", domain.ErrInvalidInput, key, value)
		}
		switch key {
		case keyChunkSize:
			settings.Chunking.Size = n
		case keyChunkOverlap:
			settings.Chunking.Overlap = n
		case keyRetrievalK:
			settings.Retrieval.K = n
		default:
			settings.Agent.MaxSteps = n
		}
		stored = n
	case keyEmbedRate:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number: %q", domain.ErrInvalidInput, key, value)
		}
		stored = f
	case keyCollection:
		settings.Retrieval.Collection = value
	case keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
		keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keySystemPrompt:
		// Free-form strings.
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the recognised config keys in display order.
func (s *SettingsService) Keys() []string {
	out := make([]string, len(settingKeys))
	copy(out, settingKeys)
	return out
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero distinguishes a stored 0 from a missing key.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getSplitter(defaultVal domain.SplitterKind) domain.SplitterKind {
	kind := domain.SplitterKind(s.configStore.GetString(keySplitter))
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}
