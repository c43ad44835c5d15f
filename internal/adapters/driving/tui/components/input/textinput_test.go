package input

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

func TestNewQuestionInput(t *testing.T) {
	q := NewQuestionInput(styles.DefaultStyles())

	require.NotNil(t, q)
	assert.True(t, q.Focused())
	assert.Equal(t, 60, q.Width())
	assert.Empty(t, q.Value())
	assert.Equal(t, MaxQuestionLength, q.textinput.CharLimit)
}

func TestNewQuestionInput_NilStyles(t *testing.T) {
	q := NewQuestionInput(nil)

	require.NotNil(t, q)
	assert.NotNil(t, q.styles)
}

func TestQuestionInput_Init(t *testing.T) {
	q := NewQuestionInput(nil)

	assert.NotNil(t, q.Init())
}

func TestQuestionInput_TypingUpdatesValue(t *testing.T) {
	q := NewQuestionInput(nil)

	for _, r := range "what is RAG?" {
		q, _ = q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "what is RAG?", q.Value())
}

func TestQuestionInput_ValueTrimsWhitespace(t *testing.T) {
	q := NewQuestionInput(nil)

	q.SetValue("   who wrote it?  ")

	assert.Equal(t, "who wrote it?", q.Value())
}

func TestQuestionInput_FocusAndBlur(t *testing.T) {
	q := NewQuestionInput(nil)

	q.Blur()
	assert.False(t, q.Focused())

	q.Focus()
	assert.True(t, q.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		inputWidth int
	}{
		{"wide terminal", 100, 88},
		{"narrow terminal clamps", 25, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuestionInput(nil)

			q.SetWidth(tt.width)

			assert.Equal(t, tt.width, q.Width())
			assert.Equal(t, tt.inputWidth, q.textinput.Width)
		})
	}
}

func TestQuestionInput_Reset(t *testing.T) {
	q := NewQuestionInput(nil)
	q.SetValue("something")

	q.Reset()

	assert.Empty(t, q.Value())
}

func TestQuestionInput_View(t *testing.T) {
	q := NewQuestionInput(nil)

	view := q.View()

	assert.True(t, strings.Contains(view, "Ask:"))
}
