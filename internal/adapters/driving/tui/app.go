package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/views/menu"
)

var _ tea.Model = (*App)(nil)

// screen is how the app drives one view.
type screen struct {
	update func(tea.Msg) tea.Cmd
	view   func() string
	resize func(width, height int)
	// enter runs each time the screen is shown. Optional.
	enter func() tea.Cmd
}

// App routes messages to the active screen. Answers, spinner ticks and
// catalogue loads always reach their own screen so work started there
// completes even after the user navigates away.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView      *menu.View
	askView       *ask.View
	documentsView *documents.View

	screens     map[messages.ViewType]screen
	currentView messages.ViewType

	// err is the most recent failure reported by any screen.
	err error

	width  int
	height int
	ready  bool
}

// NewApp builds the app and its screens.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		menuView:      menu.NewView(s, km),
		askView:       ask.NewView(s, km, ports.Query, ports.TopK),
		documentsView: documents.NewView(s, km, ports.Document),
		currentView:   messages.ViewMenu,
	}
	a.screens = map[messages.ViewType]screen{
		messages.ViewMenu: {
			update: func(msg tea.Msg) (cmd tea.Cmd) {
				a.menuView, cmd = a.menuView.Update(msg)
				return cmd
			},
			view:   func() string { return a.menuView.View() },
			resize: func(w, h int) { a.menuView.SetDimensions(w, h) },
		},
		messages.ViewAsk: {
			update: func(msg tea.Msg) (cmd tea.Cmd) {
				a.askView, cmd = a.askView.Update(msg)
				return cmd
			},
			view:   func() string { return a.askView.View() },
			resize: func(w, h int) { a.askView.SetDimensions(w, h) },
			enter: func() tea.Cmd {
				a.askView.Reset()
				return a.askView.Init()
			},
		},
		messages.ViewDocuments: {
			update: func(msg tea.Msg) (cmd tea.Cmd) {
				a.documentsView, cmd = a.documentsView.Update(msg)
				return cmd
			},
			view:   func() string { return a.documentsView.View() },
			resize: func(w, h int) { a.documentsView.SetDimensions(w, h) },
			enter:  func() tea.Cmd { return a.documentsView.Load() },
		},
		messages.ViewHelp: {
			update: a.updateHelp,
			view:   a.viewHelp,
			resize: func(int, int) {},
		},
	}
	return a, nil
}

// WithContext sets the context passed to service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("docqa - Document Q&A"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case messages.Quit:
		return a, tea.Quit

	case messages.ViewChanged:
		return a, a.show(msg.View)

	case messages.AnswerCompleted:
		a.err = nil
		if !msg.Result.Success {
			a.err = errors.New(msg.Result.ErrorMessage)
		}
		return a, a.screens[messages.ViewAsk].update(msg)

	case spinner.TickMsg:
		return a, a.screens[messages.ViewAsk].update(msg)

	case messages.DocumentsLoaded:
		if msg.Err != nil {
			a.err = msg.Err
		}
		return a, a.screens[messages.ViewDocuments].update(msg)

	case messages.ErrorOccurred:
		a.err = msg.Err
	}

	return a, a.active().update(msg)
}

// show switches to v and runs its enter hook.
func (a *App) show(v messages.ViewType) tea.Cmd {
	if _, ok := a.screens[v]; !ok {
		return nil
	}
	a.currentView = v
	if enter := a.active().enter; enter != nil {
		return enter()
	}
	return nil
}

func (a *App) active() screen {
	return a.screens[a.currentView]
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	return a.active().view()
}

func (a *App) updateHelp(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, a.keymap.Back) {
		a.currentView = messages.ViewMenu
	}
	return nil
}

// viewHelp lists every binding, grouped by screen.
func (a *App) viewHelp() string {
	return strings.Join([]string{
		a.styles.Title.Render("Help"),
		"",
		keymap.Table(a.keymap.FullHelp()),
		a.styles.Help.Render("Questions are answered only from indexed PDFs. Add more with 'docqa ingest'."),
		"",
		a.styles.Help.Render("[esc] back to menu"),
	}, "\n")
}

// Run starts the program and blocks until it exits.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

// CurrentView returns the active screen.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the most recent failure.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions resizes every screen.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	for _, s := range a.screens {
		s.resize(width, height)
	}
}
