package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

type stubPromptStore struct {
	prompts map[string]string
}

func (s stubPromptStore) Load(name string) (string, error) {
	if p, ok := s.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}

func (s stubPromptStore) Reload() {}

func TestAnswerMessages_Defaults(t *testing.T) {
	msgs := AnswerMessages(nil, "What is X?", "[Source 1: Document: Guide, Author: Ann, Page: 2]\nX is Y.\n")

	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, DefaultAnswerSystemPrompt, msgs[0].Content)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Question: What is X?")
	assert.Contains(t, msgs[1].Content, "Context:\n[Source 1: Document: Guide")
	assert.Contains(t, msgs[1].Content, "based ONLY on the provided context")
}

func TestAnswerMessages_CustomPrompts(t *testing.T) {
	store := stubPromptStore{prompts: map[string]string{
		driven.PromptAnswerSystem: "Be brief.",
		driven.PromptAnswer:       "Q=%s C=%s",
	}}

	msgs := AnswerMessages(store, "q", "c")
	assert.Equal(t, "Be brief.", msgs[0].Content)
	assert.Equal(t, "Q=q C=c", msgs[1].Content)
}

func TestLoadPrompt_FallsBack(t *testing.T) {
	store := stubPromptStore{prompts: map[string]string{"empty": ""}}

	assert.Equal(t, "fallback", LoadPrompt(store, "missing", "fallback"))
	assert.Equal(t, "fallback", LoadPrompt(store, "empty", "fallback"))
	assert.Equal(t, "fallback", LoadPrompt(nil, "any", "fallback"))
}

func TestAnswerOptions_WithDefaults(t *testing.T) {
	opts := AnswerOptions{Temperature: 0, MaxTokens: 0}.WithDefaults()
	assert.Equal(t, domain.DefaultAnswerMaxTokens, opts.MaxTokens)
	assert.InDelta(t, 0.0, opts.Temperature, 1e-9)

	opts = AnswerOptions{Temperature: -1, MaxTokens: 42}.WithDefaults()
	assert.Equal(t, 42, opts.MaxTokens)
	assert.InDelta(t, domain.DefaultAnswerTemperature, opts.Temperature, 1e-9)

	chat := DefaultAnswerOptions().ChatOptions()
	assert.Equal(t, 500, chat.MaxTokens)
	assert.InDelta(t, 0.3, chat.Temperature, 1e-9)
}

func TestMessages(t *testing.T) {
	got := Messages([]driven.ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	})

	assert.Equal(t, []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	}, got)
}

func TestSplitSystem(t *testing.T) {
	system, rest := SplitSystem([]driven.ChatMessage{
		{Role: "system", Content: "one"},
		{Role: "user", Content: "q"},
		{Role: "system", Content: "two"},
		{Role: "assistant", Content: "a"},
	})

	assert.Equal(t, "one\n\ntwo", system)
	assert.Equal(t, []driven.ChatMessage{
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "a"},
	}, rest)
}

func TestSplitSystem_NoSystem(t *testing.T) {
	system, rest := SplitSystem([]driven.ChatMessage{{Role: "user", Content: "q"}})

	assert.Empty(t, system)
	assert.Len(t, rest, 1)
}
