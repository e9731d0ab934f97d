package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or chat.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or any OpenAI-compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"
)

// AllAIProviders returns the supported providers in menu order.
func AllAIProviders() []AIProvider {
	return []AIProvider{AIProviderOpenAI, AIProviderOllama}
}

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// SplitterKind selects the chunking strategy.
type SplitterKind string

// Available splitters.
const (
	// SplitterRecursive prefers natural text boundaries.
	SplitterRecursive SplitterKind = "recursive"

	// SplitterFixed cuts plain fixed-size windows.
	SplitterFixed SplitterKind = "fixed"
)

// IsValid returns true if the splitter is recognised.
func (k SplitterKind) IsValid() bool {
	return k == SplitterRecursive || k == SplitterFixed
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles embedding calls. Zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds chat model configuration.
type LLMSettings struct {
	// Provider is the chat model provider.
	Provider AIProvider

	// Model is the chat model name.
	Model string

	// BaseURL overrides the provider endpoint (e.g. an OpenAI-compatible host).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the chat provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings controls how documents are split.
type ChunkingSettings struct {
	Splitter SplitterKind
	Size     int
	Overlap  int
}

// Validate checks the chunk window constraints.
func (c ChunkingSettings) Validate() error {
	if !c.Splitter.IsValid() {
		return fmt.Errorf("%w: unknown splitter %q", ErrInvalidInput, c.Splitter)
	}
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, c.Size)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", ErrInvalidInput, c.Size, c.Overlap)
	}
	return nil
}

// RetrievalSettings controls similarity search.
type RetrievalSettings struct {
	// K is the default number of chunks returned per query.
	K int

	// Collection is the default collection name.
	Collection string
}

// AgentSettings controls the tool-calling loop.
type AgentSettings struct {
	// MaxSteps bounds the number of model calls per question.
	MaxSteps int

	// SystemPrompt seeds every new conversation when non-empty.
	SystemPrompt string
}

// Settings holds all application settings.
type Settings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Agent     AgentSettings
}

// Validate checks settings that would otherwise fail deep inside a run.
func (s *Settings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if s.Retrieval.K < 1 {
		return fmt.Errorf("%w: retrieval k must be at least 1, got %d", ErrInvalidInput, s.Retrieval.K)
	}
	if s.Retrieval.Collection == "" {
		return fmt.Errorf("%w: collection name is empty", ErrInvalidInput)
	}
	if s.Agent.MaxSteps < 1 {
		return fmt.Errorf("%w: agent max steps must be at least 1, got %d", ErrInvalidInput, s.Agent.MaxSteps)
	}
	return nil
}

// DefaultSettings returns settings matching the website Q&A defaults:
// OpenAI text-embedding-3-large and gpt-4o, 1000/200 chunks, k=3.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    "text-embedding-3-large",
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    "gpt-4o",
		},
		Chunking: ChunkingSettings{
			Splitter: SplitterRecursive,
			Size:     1000,
			Overlap:  200,
		},
		Retrieval: RetrievalSettings{
			K:          3,
			Collection: DefaultCollection,
		},
		Agent: AgentSettings{
			MaxSteps: 8,
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-large",
	}
}

// DefaultLLMModels returns default models for each chat provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "gpt-4o",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
