// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"time"

	ollamaembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/docqa/internal/adapters/driven/llm"
	anthropicllm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings, domain.AnswerSettings{})
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the embedding service for the configured provider,
// wrapped with rate limiting and retry on provider throttling.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, notConfigured("embedding", "")
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, domain.NewConfigurationError("embedding.provider",
			"anthropic does not support embeddings, use ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, notConfigured("embedding", settings.Provider)
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)

	default:
		return nil, domain.NewConfigurationError("embedding.provider",
			"unsupported embedding provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return ratelimit.Wrap(svc, ratelimit.Config{
		RequestsPerSecond: settings.RequestsPerSecond,
		MaxRetries:        ratelimit.DefaultMaxRetries,
	}), nil
}

// CreateLLMService creates the LLM service for the configured provider.
// Answer settings set the temperature and token limit of grounded answers.
func CreateLLMService(settings *domain.LLMSettings, answer domain.AnswerSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, notConfigured("llm", "")
	}
	if !settings.IsConfigured() {
		return nil, notConfigured("llm", settings.Provider)
	}

	opts := llm.AnswerOptions{
		Temperature: answer.Temperature,
		MaxTokens:   answer.MaxTokens,
	}.WithDefaults()

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings, opts), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings, opts)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings, opts)

	default:
		return nil, domain.NewConfigurationError("llm.provider",
			"unsupported LLM provider: %s", settings.Provider)
	}
}

// EmbeddingDimensions returns the vector size the configured model produces,
// or 0 when it is not known ahead of the first request.
func EmbeddingDimensions(settings domain.EmbeddingSettings) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	if dims := domain.EmbeddingDimensions()[settings.Model]; dims > 0 {
		return dims
	}
	if settings.Provider == domain.AIProviderOllama && settings.Model == "" {
		return ollamaembed.DefaultDimensions
	}
	if settings.Provider == domain.AIProviderOpenAI && settings.Model == "" {
		return domain.EmbeddingDimensions()[openaiembed.DefaultModel]
	}
	return 0
}

// notConfigured reports which setting keeps a provider from being built.
func notConfigured(section string, provider domain.AIProvider) error {
	if !provider.IsValid() {
		return domain.NewConfigurationError(section+".provider", "unknown provider %q", provider)
	}
	return domain.NewConfigurationError(section+".api_key",
		"%s requires an API key. Run 'docqa settings set %s.api_key <key>' to fix", provider, section)
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: EmbeddingDimensions(*settings),
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings, opts llm.AnswerOptions) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Answer:  opts,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings, opts llm.AnswerOptions) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Answer:  opts,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings, opts llm.AnswerOptions) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Answer:  opts,
	})
}
