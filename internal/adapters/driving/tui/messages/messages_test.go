package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewAsk, "ask"},
		{ViewDocuments, "documents"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_Ordering(t *testing.T) {
	assert.Equal(t, ViewType(0), ViewMenu)
	assert.Less(t, int(ViewMenu), int(ViewAsk))
	assert.Less(t, int(ViewAsk), int(ViewDocuments))
	assert.Less(t, int(ViewDocuments), int(ViewHelp))
}

func TestAnswerCompleted_CarriesFailure(t *testing.T) {
	msg := AnswerCompleted{
		Question: "why?",
		Result:   domain.FailedAnswer(errors.New("boom")),
	}

	assert.Equal(t, "why?", msg.Question)
	assert.False(t, msg.Result.Success)
	assert.Equal(t, "boom", msg.Result.ErrorMessage)
	assert.Empty(t, msg.Result.Sources)
}
