// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoQueryService indicates that no query service was provided.
var ErrNoQueryService = errors.New("query service is required")

// noContentAnswer is shown when the answer is empty because nothing matched.
const noContentAnswer = "No relevant content was found in the indexed documents."

// View is the ask view: question input, answer pane, sources and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	answer    viewport.Model
	sources   *list.SourceList
	statusbar *status.Bar

	queryService driving.QueryService
	ctx          context.Context
	topK         int

	width      int
	height     int
	ready      bool
	asking     bool
	focusInput bool
	question   string
	result     *domain.AnswerResult
}

// NewView creates a new ask view. A topK of zero uses the service default.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	queryService driving.QueryService,
	topK int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQuestionInput(s),
		answer:       viewport.New(80, 10),
		sources:      list.NewSourceList(s),
		statusbar:    status.NewBar(s, km),
		queryService: queryService,
		ctx:          context.Background(),
		topK:         topK,
		width:        80,
		height:       24,
		focusInput:   true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.statusbar, cmd = v.statusbar.Update(msg)
		return v, cmd

	case messages.ErrorOccurred:
		v.asking = false
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	// One question at a time
	if v.asking {
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.NewQuestion):
		v.focusInput = true
		v.input.Reset()
		return v, v.input.Focus()
	case keymap.Matches(key, v.keymap.Up):
		v.sources.MoveUp()
		return v, nil
	case keymap.Matches(key, v.keymap.Down):
		v.sources.MoveDown()
		return v, nil
	case keymap.Matches(key, v.keymap.PageUp), keymap.Matches(key, v.keymap.PageDown):
		var cmd tea.Cmd
		v.answer, cmd = v.answer.Update(msg)
		return v, cmd
	}
	return v, nil
}

// submit starts answering the typed question.
func (v *View) submit() tea.Cmd {
	question := v.input.Value()
	if question == "" {
		return nil
	}

	v.asking = true
	v.focusInput = false
	v.question = question
	v.result = nil
	v.input.Blur()
	v.sources.SetSources(nil)
	v.answer.SetContent("")

	return tea.Batch(v.statusbar.StartAnswering(), v.ask(question))
}

// ask runs the query off the UI loop.
func (v *View) ask(question string) tea.Cmd {
	service := v.queryService
	ctx := v.ctx
	topK := v.topK
	return func() tea.Msg {
		if service == nil {
			return messages.ErrorOccurred{Err: ErrNoQueryService}
		}
		result := service.AnswerQuery(ctx, domain.Query{Text: question, TopK: topK})
		return messages.AnswerCompleted{Question: question, Result: result}
	}
}

// handleAnswer shows a completed answer, or its failure.
func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.asking = false
	v.result = &msg.Result

	if !msg.Result.Success {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Result.ErrorMessage)
		v.answer.SetContent(v.styles.Error.Render(msg.Result.ErrorMessage))
		return
	}

	text := msg.Result.Answer
	if text == "" {
		text = noContentAnswer
	}
	v.answer.SetContent(v.styles.Answer.Width(v.answerWidth()).Render(text))
	v.answer.GotoTop()
	v.sources.SetSources(msg.Result.Sources)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetSourceCount(len(msg.Result.Sources))
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("docqa"),
		"",
		v.input.View(),
		"",
	}

	if v.question != "" && !v.focusInput {
		sections = append(sections, v.styles.Subtitle.Render("Q: "+v.question), "")
	}
	if v.result != nil {
		sections = append(sections, v.answer.View(), "", v.sources.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// answerWidth is the wrap width of the answer text inside the viewport.
func (v *View) answerWidth() int {
	w := v.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// SetDimensions sets the view dimensions and lays out the components.
// The answer gets roughly half of the remaining height, the sources the rest.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	// Header, input, question and status take about 10 lines
	body := height - 10
	if body < 6 {
		body = 6
	}
	v.answer.Width = width
	v.answer.Height = body / 2
	v.sources.SetDimensions(width, body-body/2)
}

// Reset returns the view to an empty question.
func (v *View) Reset() {
	v.asking = false
	v.focusInput = true
	v.question = ""
	v.result = nil
	v.input.Reset()
	v.input.Focus()
	v.sources.SetSources(nil)
	v.answer.SetContent("")
	v.statusbar.Clear()
}

// Asking reports whether a question is being answered.
func (v *View) Asking() bool {
	return v.asking
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Question returns the last submitted question.
func (v *View) Question() string {
	return v.question
}

// Result returns the last answer, or nil before the first one.
func (v *View) Result() *domain.AnswerResult {
	return v.result
}

// SetQuestion sets the input text.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}
