// Package menu is the TUI start screen.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Shortcut, when enabled, selects it directly.
type Item struct {
	Label    string
	Hint     string
	View     messages.ViewType
	Quit     bool
	Shortcut key.Binding
}

// View lists the entries and turns a choice into a navigation message.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu. Nil arguments take their defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles: s,
		keymap: km,
		items: []Item{
			{Label: "Ask a question", Hint: "answers cite the pages they come from", View: messages.ViewAsk, Shortcut: km.OpenAsk},
			{Label: "Documents", Hint: "browse what has been indexed", View: messages.ViewDocuments, Shortcut: km.OpenDocuments},
			{Label: "Help", Hint: "key bindings", View: messages.ViewHelp, Shortcut: km.Help},
			{Label: "Quit", Quit: true, Shortcut: km.Quit},
		},
		width:  80,
		height: 24,
	}
}

// Init implements the view lifecycle; the menu needs no setup.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles navigation and selection.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Up):
			v.selected = max(v.selected-1, 0)
		case key.Matches(msg, v.keymap.Down):
			v.selected = min(v.selected+1, len(v.items)-1)
		case key.Matches(msg, v.keymap.Select):
			return v, v.choose(v.items[v.selected])
		default:
			for _, item := range v.items {
				if key.Matches(msg, item.Shortcut) {
					return v, v.choose(item)
				}
			}
		}
	}
	return v, nil
}

func (v *View) choose(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("docqa"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Questions answered from your PDFs"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%-16s", item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Subtitle.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		if item.Hint != "" && v.width >= 60 {
			b.WriteString(v.styles.Muted.Render(item.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(keymap.Inline(v.keymap.MenuHelp())))
	return b.String()
}

// SetDimensions sets the view size and marks it ready.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.selected
}
