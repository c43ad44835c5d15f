// Package anthropic generates answers with the Anthropic Messages API.
package anthropic

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
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	anthropicVersion = "2023-06-01"

	// defaultMaxTokens is used when the caller sets none; the API requires a value.
	defaultMaxTokens = 1024
)

// Config configures the Anthropic LLM service.
type Config struct {
	// APIKey is required.
	APIKey string

	BaseURL string
	Model   string
	Timeout time.Duration

	// Answer sets temperature and token limit for Answer.
	Answer llm.AnswerOptions
}

// LLMService talks to /v1/messages.
type LLMService struct {
	api         *aihttp.Client
	model       string
	answer      llm.AnswerOptions
	promptStore driven.PromptStore
}

type messagesRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	StopSeqs    []string      `json:"stop_sequences,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// text concatenates the text blocks of the reply.
func (r messagesResponse) text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// NewLLMService creates an Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, domain.NewConfigurationError("llm.api_key", "an Anthropic API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	api := aihttp.NewClient("anthropic", cfg.BaseURL, cfg.Timeout).
		WithHeader("x-api-key", cfg.APIKey).
		WithHeader("anthropic-version", anthropicVersion)

	return &LLMService{
		api:    api,
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
	return s.send(ctx, "", msgs, opts.MaxTokens, opts.Temperature, opts.StopWords)
}

// Chat conducts a multi-turn conversation. System messages move to the
// request's system field, which is where the API expects them.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	system, rest := llm.SplitSystem(messages)
	return s.send(ctx, system, rest, opts.MaxTokens, opts.Temperature, nil)
}

func (s *LLMService) send(
	ctx context.Context, system string, msgs []driven.ChatMessage, maxTokens int, temperature float64, stop []string,
) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	req := messagesRequest{
		Model:       s.model,
		Messages:    llm.Messages(msgs),
		MaxTokens:   maxTokens,
		System:      system,
		Temperature: &temperature,
		StopSeqs:    stop,
	}

	var resp messagesResponse
	if err := s.api.PostJSON(ctx, "/v1/messages", req, &resp, domain.ErrGenerationService); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s: %w", resp.Error.Message, domain.ErrGenerationService)
	}
	out := resp.text()
	if out == "" {
		return "", fmt.Errorf("anthropic: no text content returned: %w", domain.ErrGenerationService)
	}
	return out, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// SetPromptStore makes Answer load its prompts from store.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Probe(ctx, "/v1/models", domain.ErrLLMUnavailable)
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
