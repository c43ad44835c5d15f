// Package messages holds the tea.Msg values passed between TUI views.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ViewType names a screen.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewAsk
	ViewDocuments
	ViewHelp
)

var viewNames = [...]string{
	ViewMenu:      "menu",
	ViewAsk:       "ask",
	ViewDocuments: "documents",
	ViewHelp:      "help",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ViewChanged asks the app to switch screens.
type ViewChanged struct {
	View ViewType
}

// AnswerCompleted delivers the result for Question. A failed answer
// arrives with Result.Success false, not as an error.
type AnswerCompleted struct {
	Question string
	Result   domain.AnswerResult
}

// DocumentsLoaded delivers the catalogue, or the error reading it.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// ErrorOccurred reports a failure that is not tied to one answer.
type ErrorOccurred struct {
	Err error
}

// Quit ends the program.
type Quit struct{}
