package driven

import "context"

// AnswerGenerator produces a natural-language answer grounded in context.
type AnswerGenerator interface {
	// Answer generates a response to query using only context.
	// Fails with domain.ErrGenerationService.
	Answer(ctx context.Context, query, context string) (string, error)
}

// LLMService provides language model operations.
//
// Implementations may include:
//   - OpenAI (gpt-4, gpt-4o-mini)
//   - Anthropic (claude-3-5-sonnet)
//   - Ollama (llama3.2, mistral)
type LLMService interface {
	AnswerGenerator

	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation.
type GenerateOptions struct {
	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation.
	StopWords []string
}

// ChatMessage represents a message in a conversation.
type ChatMessage struct {
	// Role is "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat completion.
type ChatOptions struct {
	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64
}
