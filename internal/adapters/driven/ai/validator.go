package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator builds each provider from settings, pings it and closes it
// again. Failures wrap domain.ErrEmbeddingUnavailable or
// domain.ErrLLMUnavailable.
type ConfigValidator struct {
	timeout time.Duration
}

// ValidatorOption configures a ConfigValidator.
type ValidatorOption func(*ConfigValidator)

// WithCheckTimeout bounds each provider check. Non-positive values keep the
// default.
func WithCheckTimeout(d time.Duration) ValidatorOption {
	return func(v *ConfigValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewConfigValidator creates a validator that gives each provider pingTimeout
// to answer.
func NewConfigValidator(opts ...ValidatorOption) *ConfigValidator {
	v := &ConfigValidator{timeout: pingTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateEmbedding checks that the embedding provider is configured and
// reachable.
func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	svc, err := CreateAndValidateEmbeddingService(ctx, config)
	if err != nil {
		return err
	}
	return svc.Close()
}

// ValidateLLM checks that the chat provider is configured and reachable.
func (v *ConfigValidator) ValidateLLM(ctx context.Context, config *domain.LLMSettings) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	model, err := CreateAndValidateChatModel(ctx, config)
	if err != nil {
		return err
	}
	return model.Close()
}
