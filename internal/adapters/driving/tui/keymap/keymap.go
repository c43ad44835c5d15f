// Package keymap defines the TUI key bindings and renders their help.
package keymap

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the views react to.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Select opens the highlighted menu entry or document.
	Select key.Binding

	// Ask submits the typed question.
	Ask         key.Binding
	NewQuestion key.Binding

	// OpenAsk and OpenDocuments jump straight to a view from the menu.
	OpenAsk       key.Binding
	OpenDocuments key.Binding

	Reload key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() *KeyMap {
	bind := func(help, desc string, keys ...string) key.Binding {
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
	}

	return &KeyMap{
		Quit: bind("q", "quit", "q", "ctrl+c"),
		Help: bind("?", "help", "?"),
		Back: bind("esc", "back", "esc"),

		Up:       bind("↑/k", "up", "up", "k"),
		Down:     bind("↓/j", "down", "down", "j"),
		PageUp:   bind("pgup", "scroll up", "pgup", "b"),
		PageDown: bind("pgdn", "scroll down", "pgdown", "f"),

		Select: bind("enter", "select", "enter"),

		Ask:         bind("enter", "ask", "enter"),
		NewQuestion: bind("n", "new question", "n"),

		OpenAsk:       bind("a", "ask", "a"),
		OpenDocuments: bind("d", "documents", "d"),

		Reload: bind("r", "reload", "r"),
	}
}

// ShortHelp is shown while a question is being typed.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Back}
}

// AnswerHelp is shown while an answer is displayed.
func (k *KeyMap) AnswerHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.PageDown, k.Back}
}

// MenuHelp is shown under the main menu.
func (k *KeyMap) MenuHelp() []key.Binding {
	return []key.Binding{k.Up, k.Select, k.OpenAsk, k.OpenDocuments, k.Quit}
}

// Section is a titled group of bindings on the help screen.
type Section struct {
	Title    string
	Bindings []key.Binding
}

// FullHelp lists every binding, grouped by the view that uses it.
func (k *KeyMap) FullHelp() []Section {
	return []Section{
		{"Menu", []key.Binding{k.Up, k.Down, k.Select, k.OpenAsk, k.OpenDocuments, k.Help, k.Quit}},
		{"Ask", []key.Binding{k.Ask, k.NewQuestion, k.Up, k.Down, k.PageUp, k.PageDown}},
		{"Documents", []key.Binding{k.Up, k.Down, k.Select, k.Reload}},
		{"Everywhere", []key.Binding{k.Back}},
	}
}

// Inline renders bindings on one line as "[key] desc".
func Inline(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, "["+h.Key+"] "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// Table renders sections one binding per line, keys aligned in a column.
func Table(sections []Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.Title + ":\n")
		for _, binding := range s.Bindings {
			h := binding.Help()
			b.WriteString("  " + h.Key + strings.Repeat(" ", max(12-len([]rune(h.Key)), 1)) + h.Desc + "\n")
		}
	}
	return b.String()
}

// Matches reports whether keyStr triggers binding.
func Matches(keyStr string, binding key.Binding) bool {
	return binding.Enabled() && slices.Contains(binding.Keys(), keyStr)
}
