// Package documents is the TUI catalogue browser.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoDocumentService is reported when the view has nothing to list from.
var ErrNoDocumentService = errors.New("document service not available")

// Fixed column widths; the title column takes what is left.
const (
	pagesWidth   = 5
	chunksWidth  = 6
	indexedWidth = 10
	minTitle     = 12

	// Lines used around the table: heading, blank, position, blank, help.
	chrome = 5
)

// View shows the catalogue as a table, with a details panel for the
// highlighted document.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.DocumentService
	ctx     context.Context

	table     table.Model
	documents []domain.Document

	width   int
	height  int
	ready   bool
	loading bool
	details bool
	err     error
}

// NewView creates the view. Nil styles or keymap take their defaults; a
// nil service makes every load fail with ErrNoDocumentService.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderForeground(s.Theme().Frame).
		Foreground(s.Theme().Accent).
		Bold(true)
	ts.Selected = s.Selected

	v := &View{
		styles:  s,
		keymap:  km,
		service: service,
		ctx:     context.Background(),
		table:   table.New(table.WithFocused(true), table.WithStyles(ts)),
	}
	v.layout()
	return v
}

// WithContext sets the context used by catalogue loads.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init implements the view lifecycle; loading starts from Load.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load closes the details panel, clears errors and fetches the catalogue.
func (v *View) Load() tea.Cmd {
	v.details = false
	v.err = nil
	if len(v.documents) > 0 {
		v.table.SetCursor(0)
	}
	return v.fetch()
}

func (v *View) fetch() tea.Cmd {
	v.loading = true
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		docs, err := service.List(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update handles keys, resizes and load results.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.setDocuments(msg.Documents)
		}

	case messages.ErrorOccurred:
		v.err = msg.Err

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.details {
		if key.Matches(msg, v.keymap.Back, v.keymap.Select) {
			v.details = false
		}
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keymap.Select):
		v.details = len(v.documents) > 0
		return v, nil
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case key.Matches(msg, v.keymap.Reload):
		return v, v.fetch()
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

// setDocuments replaces the rows, keeping the cursor on a real row. An
// empty table leaves the cursor at -1.
func (v *View) setDocuments(docs []domain.Document) {
	v.documents = docs
	rows := make([]table.Row, len(docs))
	for i := range docs {
		rows[i] = row(&docs[i])
	}
	v.table.SetRows(rows)
	if n := len(rows); n > 0 {
		v.table.SetCursor(min(max(v.table.Cursor(), 0), n-1))
	}
}

func row(doc *domain.Document) table.Row {
	title := doc.Metadata.Title
	if title == "" {
		title = doc.ID
	}
	indexed := "-"
	if !doc.CreatedAt.IsZero() {
		indexed = doc.CreatedAt.Format("2006-01-02")
	}
	return table.Row{title, strconv.Itoa(doc.Metadata.PageCount), strconv.Itoa(doc.ChunkCount), indexed}
}

// layout sizes the table and its columns to the current dimensions.
func (v *View) layout() {
	// Each cell carries one column of padding either side.
	fixed := pagesWidth + chunksWidth + indexedWidth + 4*2
	titleWidth := max(v.width-fixed, minTitle)

	v.table.SetColumns([]table.Column{
		{Title: "Title", Width: titleWidth},
		{Title: "Pages", Width: pagesWidth},
		{Title: "Chunks", Width: chunksWidth},
		{Title: "Indexed", Width: indexedWidth},
	})
	v.table.SetWidth(titleWidth + fixed)
	v.table.SetHeight(max(v.height-chrome, 3))
}

// View renders the current state.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents indexed yet. Run 'docqa ingest <path>' to add PDFs."))
	case v.details:
		b.WriteString(v.renderDetails(v.SelectedDocument()))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render(keymap.Inline([]key.Binding{v.keymap.Back})))
		return b.String()
	default:
		b.WriteString(v.table.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d of %d", v.SelectedIndex()+1, len(v.documents))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(keymap.Inline([]key.Binding{
		v.keymap.Up, v.keymap.Down, v.keymap.Select, v.keymap.Reload, v.keymap.Back,
	})))
	return b.String()
}

func (v *View) renderDetails(doc *domain.Document) string {
	fields := []struct{ label, value string }{
		{"ID", doc.ID},
		{"File", doc.Filename},
		{"Title", doc.Metadata.Title},
		{"Author", doc.Metadata.Author},
		{"Pages", strconv.Itoa(doc.Metadata.PageCount)},
		{"Chunks", strconv.Itoa(doc.ChunkCount)},
	}
	if !doc.CreatedAt.IsZero() {
		fields = append(fields, struct{ label, value string }{"Indexed", doc.CreatedAt.Format("2006-01-02 15:04")})
	}

	lines := []string{v.styles.Subtitle.Render(doc.Metadata.Title), ""}
	for _, f := range fields {
		lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("%-8s", f.label))+v.styles.Normal.Render(f.value))
	}
	return v.styles.Panel.Render(strings.Join(lines, "\n"))
}

// SetDimensions resizes the view and marks it ready.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.layout()
}

// Documents returns the loaded catalogue.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedIndex returns the highlighted row.
func (v *View) SelectedIndex() int {
	return max(v.table.Cursor(), 0)
}

// SelectedDocument returns the highlighted document, or nil when the
// catalogue is empty.
func (v *View) SelectedDocument() *domain.Document {
	i := v.SelectedIndex()
	if i >= len(v.documents) {
		return nil
	}
	return &v.documents[i]
}

// IsShowingDetails reports whether the details panel is open.
func (v *View) IsShowingDetails() bool {
	return v.details
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
