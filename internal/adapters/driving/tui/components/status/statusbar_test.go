package status

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.SourceCount())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_Init(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())
}

func TestStatusBar_UpdateIgnoresKeys(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_StartAnswering(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetMessage("old")
	bar.SetSourceCount(4)

	cmd := bar.StartAnswering()

	require.NotNil(t, cmd)
	assert.Equal(t, StateAnswering, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 0, bar.SourceCount())
	assert.Contains(t, bar.View(), "Answering...")
}

func TestStatusBar_SpinnerTicksOnlyWhileAnswering(t *testing.T) {
	bar := NewBar(nil, nil)
	tick := bar.spinner.Tick()
	require.IsType(t, spinner.TickMsg{}, tick)

	_, cmd := bar.Update(tick)
	assert.Nil(t, cmd, "idle bar should not keep ticking")

	bar.StartAnswering()
	_, cmd = bar.Update(tick)
	assert.NotNil(t, cmd)
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(b *Bar)
		contains []string
	}{
		{
			name:     "ready",
			setup:    func(_ *Bar) {},
			contains: []string{"Ready", "enter: ask"},
		},
		{
			name: "answered with sources",
			setup: func(b *Bar) {
				b.SetState(StateAnswered)
				b.SetSourceCount(3)
			},
			contains: []string{"3 sources", "n: new question"},
		},
		{
			name: "answered with one source",
			setup: func(b *Bar) {
				b.SetState(StateAnswered)
				b.SetSourceCount(1)
			},
			contains: []string{"1 source"},
		},
		{
			name: "error with message",
			setup: func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("embedding service error")
			},
			contains: []string{"Error: embedding service error"},
		},
		{
			name: "error without message",
			setup: func(b *Bar) {
				b.SetState(StateError)
			},
			contains: []string{"Error"},
		},
		{
			name: "ready with message",
			setup: func(b *Bar) {
				b.SetMessage("Loaded 2 documents")
			},
			contains: []string{"Loaded 2 documents"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			tt.setup(bar)

			view := bar.View()

			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("failure")
	bar.SetSourceCount(2)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 0, bar.SourceCount())
}
