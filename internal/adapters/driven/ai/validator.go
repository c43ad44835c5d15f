package ai

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings by pinging the configured services.
type ConfigValidator struct {
	validateEmbedding func(*domain.EmbeddingSettings) error
	validateLLM       func(*domain.LLMSettings) error
}

// NewConfigValidator creates a validator that pings real providers.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		validateEmbedding: ValidateEmbeddingConfig,
		validateLLM:       ValidateLLMConfig,
	}
}

// ValidateEmbedding pings the embedding provider. Unconfigured providers pass.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return v.validateEmbedding(config)
}

// ValidateLLM pings the LLM provider. Unconfigured providers pass.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return v.validateLLM(config)
}
