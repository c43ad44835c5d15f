// Package llm holds the answer prompt shared by the LLM provider adapters.
package llm

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultAnswerSystemPrompt instructs the model to stay within the context.
const DefaultAnswerSystemPrompt = "You are a helpful assistant that answers questions based on the provided " +
	"context. If the answer cannot be found in the context, admit that you don't know rather than " +
	"making up an answer."

// DefaultAnswerPrompt takes the question, then the context.
const DefaultAnswerPrompt = `Please answer the following question based ONLY on the provided context: make the answer short and concise.

Question: %s

Context:
%s

Answer:`

// AnswerOptions controls answer generation.
type AnswerOptions struct {
	Temperature float64
	MaxTokens   int
}

// DefaultAnswerOptions returns the default generation parameters.
func DefaultAnswerOptions() AnswerOptions {
	return AnswerOptions{
		Temperature: domain.DefaultAnswerTemperature,
		MaxTokens:   domain.DefaultAnswerMaxTokens,
	}
}

// WithDefaults fills unset fields. A zero temperature is kept.
func (o AnswerOptions) WithDefaults() AnswerOptions {
	if o.MaxTokens <= 0 {
		o.MaxTokens = domain.DefaultAnswerMaxTokens
	}
	if o.Temperature < 0 {
		o.Temperature = domain.DefaultAnswerTemperature
	}
	return o
}

// ChatOptions converts to driven.ChatOptions.
func (o AnswerOptions) ChatOptions() driven.ChatOptions {
	return driven.ChatOptions{MaxTokens: o.MaxTokens, Temperature: o.Temperature}
}

// LoadPrompt loads a prompt from the store, falling back to the default if unavailable.
func LoadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// AnswerMessages builds the system and user messages for a grounded answer.
func AnswerMessages(store driven.PromptStore, query, context string) []driven.ChatMessage {
	system := LoadPrompt(store, driven.PromptAnswerSystem, DefaultAnswerSystemPrompt)
	user := fmt.Sprintf(LoadPrompt(store, driven.PromptAnswer, DefaultAnswerPrompt), query, context)
	return []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// Message is the role/content pair the supported chat APIs share.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Messages converts chat messages to their wire form.
func Messages(msgs []driven.ChatMessage) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Message{Role: m.Role, Content: m.Content}
	}
	return out
}

// SplitSystem separates system messages, joined by a blank line, from the
// rest of the conversation.
func SplitSystem(msgs []driven.ChatMessage) (string, []driven.ChatMessage) {
	var system []string
	rest := make([]driven.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}
