package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func testSources() []domain.SourceAttribution {
	return []domain.SourceAttribution{
		{DocumentID: "d1", Title: "Handbook", Author: "HR", PageNumber: 3, ChunkID: "c1", Score: 0.92},
		{DocumentID: "d1", Title: "Handbook", Author: domain.DefaultAuthor, PageNumber: 7, ChunkID: "c2", Score: 0.81},
		{DocumentID: "d2", Title: "Policy", Author: "Legal", PageNumber: 1, ChunkID: "c3", Score: 0.75},
	}
}

func TestNewSourceList(t *testing.T) {
	l := NewSourceList(nil)

	require.NotNil(t, l)
	assert.NotNil(t, l.styles)
	assert.Equal(t, 0, l.Count())
	assert.Nil(t, l.SelectedSource())
}

func TestSourceList_EmptyView(t *testing.T) {
	l := NewSourceList(nil)

	assert.Contains(t, l.View(), "No sources")
}

func TestSourceList_View(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testSources())

	view := l.View()

	assert.Contains(t, view, "Sources (3)")
	assert.Contains(t, view, "[1] Handbook, p. 3 (HR)")
	assert.Contains(t, view, "[2] Handbook, p. 7")
	assert.NotContains(t, view, "(Unknown)")
	assert.Contains(t, view, "0.75")
}

func TestSourceList_Navigation(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testSources())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, l.Selected())

	// Boundary
	l.MoveDown()
	assert.Equal(t, 2, l.Selected())
	assert.Equal(t, "c3", l.SelectedSource().ChunkID)

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, l.Selected())

	l.MoveUp()
	l.MoveUp()
	assert.Equal(t, 0, l.Selected())
}

func TestSourceList_SetSourcesResetsSelection(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testSources())
	l.MoveDown()

	l.SetSources(testSources()[:1])

	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 1, l.Count())
}

func TestSourceList_ScrollsToSelection(t *testing.T) {
	l := NewSourceList(nil)
	l.SetDimensions(80, 3)
	l.SetSources(testSources())
	l.MoveDown()
	l.MoveDown()

	view := l.View()

	assert.Contains(t, view, "[3] Policy")
	assert.NotContains(t, view, "[1] Handbook")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"fits", "short", 10, "short"},
		{"cut", "a long source title", 10, "a long ..."},
		{"multibyte", "ééééééé", 5, "éé..."},
		{"tiny limit", "abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.n))
			assert.LessOrEqual(t, len([]rune(truncate(tt.in, tt.n))), tt.n)
			assert.True(t, strings.HasPrefix(tt.in, strings.TrimSuffix(truncate(tt.in, tt.n), "...")))
		})
	}
}
