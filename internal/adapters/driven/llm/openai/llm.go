// Package openai generates answers with the OpenAI chat completions API.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/aihttp"
	"github.com/custodia-labs/docqa/internal/adapters/driven/llm"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var (
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.PromptStoreAware = (*LLMService)(nil)
)

// Defaults applied by NewLLMService.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is required.
	APIKey string

	// BaseURL also accepts Azure OpenAI and compatible endpoints.
	BaseURL string

	Model   string
	Timeout time.Duration

	// Answer sets temperature and token limit for Answer.
	Answer llm.AnswerOptions
}

// LLMService talks to /chat/completions.
type LLMService struct {
	api         *aihttp.Client
	model       string
	answer      llm.AnswerOptions
	promptStore driven.PromptStore
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      llm.Message `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewLLMService creates an OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, domain.NewConfigurationError("llm.api_key", "an OpenAI API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		api:    aihttp.NewClient("openai", cfg.BaseURL, cfg.Timeout).WithBearer(cfg.APIKey),
		model:  cfg.Model,
		answer: cfg.Answer.WithDefaults(),
	}, nil
}

// Answer generates a grounded answer to query from context.
func (s *LLMService) Answer(ctx context.Context, query, context string) (string, error) {
	out, err := s.Chat(ctx, llm.AnswerMessages(s.promptStore, query, context), s.answer.ChatOptions())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Generate sends prompt as a single user message.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	msgs := []driven.ChatMessage{{Role: "user", Content: prompt}}
	return s.complete(ctx, msgs, opts.MaxTokens, opts.Temperature, opts.StopWords)
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.complete(ctx, messages, opts.MaxTokens, opts.Temperature, nil)
}

func (s *LLMService) complete(
	ctx context.Context, msgs []driven.ChatMessage, maxTokens int, temperature float64, stop []string,
) (string, error) {
	req := chatCompletionRequest{
		Model:       s.model,
		Messages:    llm.Messages(msgs),
		Temperature: &temperature,
		Stop:        stop,
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	var resp chatCompletionResponse
	if err := s.api.PostJSON(ctx, "/chat/completions", req, &resp, domain.ErrGenerationService); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("openai error: %s: %w", resp.Error.Message, domain.ErrGenerationService)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no response choices returned: %w", domain.ErrGenerationService)
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// SetPromptStore makes Answer load its prompts from store.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Probe(ctx, "/models", domain.ErrLLMUnavailable)
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
