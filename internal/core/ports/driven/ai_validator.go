package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// AIConfigValidator checks provider settings against the live service
// before they are saved. Unconfigured providers pass.
type AIConfigValidator interface {
	// ValidateEmbedding builds an embedder from config and pings it.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM builds an answer generator from config and pings it.
	ValidateLLM(config *domain.LLMSettings) error
}
