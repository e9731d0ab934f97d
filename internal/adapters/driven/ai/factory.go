// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/sitechat/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sitechat/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/sitechat/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sitechat/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to configuration errors.
const fixHint = "Run 'sitechat settings show' to review, or set OPENAI_API_KEY"

// Services holds the AI adapters built from settings.
type Services struct {
	Embedding driven.EmbeddingService
	Chat      driven.ChatModel
}

// Close releases all resources held by Services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.Chat != nil {
		s.Chat.Close()
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateChatModel creates a chat model and validates connectivity.
func CreateAndValidateChatModel(ctx context.Context, settings *domain.LLMSettings) (driven.ChatModel, error) {
	model, err := CreateChatModel(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := model.Ping(pingCtx); err != nil {
		model.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return model, nil
}

// CreateEmbeddingService creates the embedding service for the configured provider.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("embedding settings missing")
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("embedding provider %q is not configured", settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateChatModel creates the chat model for the configured provider.
func CreateChatModel(settings *domain.LLMSettings) (driven.ChatModel, error) {
	if settings == nil {
		return nil, fmt.Errorf("llm settings missing")
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("llm provider %q is not configured", settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewChatModel(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewChatModel(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
