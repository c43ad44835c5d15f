package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// ContextDelimiter separates chunks in the assembled context.
const ContextDelimiter = "\n---\n"

// AnswerAssembler builds a grounded answer from retrieved chunks.
type AnswerAssembler struct {
	generator        driven.AnswerGenerator
	maxContextLength int
}

// NewAnswerAssembler creates a new answer assembler.
func NewAnswerAssembler(generator driven.AnswerGenerator, cfg domain.AnswerSettings) *AnswerAssembler {
	return &AnswerAssembler{
		generator:        generator,
		maxContextLength: cfg.MaxContextLength,
	}
}

// Assemble generates an answer from the retrieved chunks and attributes it
// to exactly the chunks placed in the context. It never returns an error:
// generation failures become an unsuccessful result.
func (a *AnswerAssembler) Assemble(
	ctx context.Context, query domain.Query, retrieved []domain.RetrievedChunk,
) domain.AnswerResult {
	if len(retrieved) == 0 {
		logger.Debug("No chunks retrieved, returning empty answer")
		return domain.EmptyAnswer()
	}

	contextText, used := a.BuildContext(retrieved)
	if len(used) == 0 {
		logger.Warn("context budget of %d characters fits no chunk text, returning empty answer", a.maxContextLength)
		return domain.EmptyAnswer()
	}
	logger.Debug("Context: %d chunks, %d characters (dropped %d)",
		len(used), utf8.RuneCountInString(contextText), len(retrieved)-len(used))

	answer, err := a.generator.Answer(ctx, query.Text, contextText)
	if err != nil {
		logger.Warn("answer generation failed: %v", err)
		return domain.FailedAnswer(fmt.Errorf("generate answer: %w", err))
	}

	sources := make([]domain.SourceAttribution, len(used))
	for i, chunk := range used {
		sources[i] = chunk.Attribution()
	}

	return domain.AnswerResult{
		Answer:  strings.TrimSpace(answer),
		Sources: sources,
		Success: true,
	}
}

// BuildContext renders the chunks in their given order within the length
// budget and returns the context with the chunks it contains. Over budget,
// the lowest-scoring chunks are dropped first. If the best chunk alone does
// not fit, its text is clipped. When the budget cannot hold even the source
// header plus one character of text, the context is empty and no chunk is
// returned.
func (a *AnswerAssembler) BuildContext(retrieved []domain.RetrievedChunk) (string, []domain.RetrievedChunk) {
	kept := append([]domain.RetrievedChunk(nil), retrieved...)

	rendered := renderContext(kept)
	if a.maxContextLength <= 0 {
		return rendered, kept
	}

	for len(kept) > 1 && utf8.RuneCountInString(rendered) > a.maxContextLength {
		kept = dropLowestScore(kept)
		rendered = renderContext(kept)
	}

	if utf8.RuneCountInString(rendered) > a.maxContextLength {
		only := kept[0]
		budget := a.maxContextLength - utf8.RuneCountInString(renderContext([]domain.RetrievedChunk{withText(only, "")}))
		if budget <= 0 {
			return "", nil
		}
		only = withText(only, clipRunes(only.Payload.Text, budget))
		kept = []domain.RetrievedChunk{only}
		rendered = renderContext(kept)
	}

	return rendered, kept
}

// renderContext formats chunks as numbered source blocks.
func renderContext(chunks []domain.RetrievedChunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[Source %d: Document: %s, Author: %s, Page: %d]\n%s\n",
			i+1, c.Payload.Title, c.Payload.Author, c.Payload.PageNumber, c.Payload.Text)
	}
	return strings.Join(parts, ContextDelimiter)
}

// dropLowestScore removes the lowest-scoring chunk, the later one on ties.
func dropLowestScore(chunks []domain.RetrievedChunk) []domain.RetrievedChunk {
	lowest := 0
	for i, c := range chunks {
		if c.Score <= chunks[lowest].Score {
			lowest = i
		}
	}
	out := make([]domain.RetrievedChunk, 0, len(chunks)-1)
	out = append(out, chunks[:lowest]...)
	return append(out, chunks[lowest+1:]...)
}

func withText(c domain.RetrievedChunk, text string) domain.RetrievedChunk {
	c.Payload.Text = text
	return c
}

func clipRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
