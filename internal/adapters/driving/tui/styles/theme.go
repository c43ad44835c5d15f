// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Relevance thresholds used to colour similarity scores.
const (
	StrongMatch = 0.80
	FairMatch   = 0.60
)

// Theme is the colour palette.
type Theme struct {
	Accent    lipgloss.Color
	Highlight lipgloss.Color
	Text      lipgloss.Color
	Dim       lipgloss.Color
	Surface   lipgloss.Color
	Frame     lipgloss.Color
	Danger    lipgloss.Color

	// Score tiers, from StrongMatch down.
	Strong lipgloss.Color
	Fair   lipgloss.Color
	Weak   lipgloss.Color
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#7AA2F7"),
		Highlight: lipgloss.Color("#BB9AF7"),
		Text:      lipgloss.Color("#C0CAF5"),
		Dim:       lipgloss.Color("#565F89"),
		Surface:   lipgloss.Color("#16161E"),
		Frame:     lipgloss.Color("#3B4261"),
		Danger:    lipgloss.Color("#F7768E"),
		Strong:    lipgloss.Color("#9ECE6A"),
		Fair:      lipgloss.Color("#E0AF68"),
		Weak:      lipgloss.Color("#FF9E64"),
	}
}

// Styles are the rendered styles shared by every view.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style

	// InputField frames the question prompt.
	InputField lipgloss.Style

	StatusBar lipgloss.Style

	// Answer sets generated text off with a rule on the left.
	Answer lipgloss.Style

	// Citation renders a source line under an answer.
	Citation lipgloss.Style

	// Panel frames the document details pane.
	Panel lipgloss.Style

	Spinner lipgloss.Style

	strong lipgloss.Style
	fair   lipgloss.Style
	weak   lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme: theme,

		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Highlight).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Dim),
		Selected: fg(theme.Surface).Background(theme.Accent).Bold(true),
		Error:    fg(theme.Danger),
		Help:     fg(theme.Dim).Italic(true),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1),

		StatusBar: fg(theme.Dim).Background(theme.Surface).Padding(0, 1),

		Answer: fg(theme.Text).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(theme.Highlight).
			PaddingLeft(1),

		Citation: fg(theme.Highlight),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),

		Spinner: fg(theme.Highlight),

		strong: fg(theme.Strong),
		fair:   fg(theme.Fair),
		weak:   fg(theme.Weak),
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Score picks the style for a similarity score.
func (s *Styles) Score(score float64) lipgloss.Style {
	switch {
	case score >= StrongMatch:
		return s.strong
	case score >= FairMatch:
		return s.fair
	default:
		return s.weak
	}
}
