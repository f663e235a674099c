// Package records implements the paginated record table: a filter input
// with pool-backed completion above a grid of table rows, fetched one page
// at a time.
package records

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/completion"
	"github.com/andyslucky/gobang/internal/msg"
	"github.com/andyslucky/gobang/internal/schema"
	"github.com/andyslucky/gobang/internal/theme"
	"github.com/andyslucky/gobang/internal/ui/grid"
	"github.com/andyslucky/gobang/internal/ui/input"
)

const fetchTimeout = 5 * time.Second

// Model is the record table component.
type Model struct {
	shared *adapter.SharedPool
	source *completion.PoolSource

	filter input.Model
	grid   grid.Model

	database *schema.Database
	table    *schema.Table

	appliedFilter string
	endOfData     bool
	loading       bool
	gen           uint64

	width     int
	height    int
	focused   bool
	gridFocus bool
}

// New creates a record table reading from the shared pool cell.
func New(shared *adapter.SharedPool) Model {
	source := completion.NewPoolSource(shared)
	filter := input.New("WHERE ", "filter predicate")
	filter.AttachCompletion(source)

	return Model{
		shared:    shared,
		source:    source,
		filter:    filter,
		grid:      grid.New(),
		gridFocus: true,
	}
}

// Name returns the toolbar label.
func (m Model) Name() string { return "Records" }

// OnTableSelected repoints the table, resets the grid and returns the
// command fetching the first page with the current filter.
func (m *Model) OnTableSelected(database schema.Database, table schema.Table) tea.Cmd {
	db := database
	t := table
	m.database = &db
	m.table = &t
	m.endOfData = false
	m.loading = true
	m.grid.Reset()
	m.gen++
	m.source.SetScope(m.database, m.table)

	return m.fetchFirstPage()
}

// Source exposes the pool-backed completion source for refreshes.
func (m *Model) Source() *completion.PoolSource {
	return m.source
}

// Update handles keys. The returned bool reports consumption.
func (m Model) Update(keyMsg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if !m.focused {
		return m, nil, false
	}

	if !m.gridFocus {
		return m.updateFilter(keyMsg)
	}

	switch keyMsg.String() {
	case "/":
		m.gridFocus = false
		m.filter.Focus()
		m.grid.Blur()
		return m, nil, true
	}

	atEnd := m.grid.AtLastRow()
	var consumed bool
	m.grid, consumed = m.grid.Update(keyMsg)

	// Scrolling past the loaded end fetches the next page.
	if consumed && atEnd && m.grid.AtLastRow() && !m.endOfData && !m.loading {
		switch keyMsg.String() {
		case "down", "j", "pgdown", "end", "G":
			m.loading = true
			return m, m.fetchNextPage(), true
		}
	}
	return m, nil, consumed
}

func (m Model) updateFilter(keyMsg tea.KeyMsg) (Model, tea.Cmd, bool) {
	var consumed bool
	m.filter, consumed = m.filter.Update(keyMsg)
	if consumed {
		return m, nil, true
	}

	switch keyMsg.String() {
	case "enter":
		// Submit: re-read the first page with the new predicate.
		m.gridFocus = true
		m.filter.Blur()
		m.grid.Focus()
		if m.table != nil {
			m.endOfData = false
			m.loading = true
			m.gen++
			return m, m.fetchFirstPage(), true
		}
		return m, nil, true
	case "esc":
		m.gridFocus = true
		m.filter.Blur()
		m.grid.Focus()
		return m, nil, true
	}
	return m, nil, false
}

// HandleRecordsLoaded applies a first-page result.
func (m *Model) HandleRecordsLoaded(loaded msg.RecordsLoadedMsg) {
	if loaded.Gen != m.gen {
		return
	}
	m.loading = false
	if loaded.Err != nil {
		// A failed table selection resets the view but keeps focus.
		m.grid.Reset()
		m.endOfData = false
		return
	}
	m.appliedFilter = m.filter.Value()
	m.grid.SetData(loaded.Headers, loaded.Rows)
	if len(loaded.Rows) < adapter.RecordsLimitPerPage {
		m.endOfData = true
	}
	if m.focused && m.gridFocus {
		m.grid.Focus()
	}
}

// HandleRecordPage appends a follow-up page. An empty page marks end of
// data; a failed fetch leaves the table in its previous state.
func (m *Model) HandleRecordPage(page msg.RecordPageMsg) {
	if page.Gen != m.gen {
		return
	}
	m.loading = false
	if page.Err != nil {
		return
	}
	if len(page.Rows) == 0 {
		m.endOfData = true
		return
	}
	m.grid.AppendRows(page.Rows)
}

func (m *Model) fetchFirstPage() tea.Cmd {
	pool := m.shared.Get()
	database := m.database
	table := m.table
	filter := m.filter.Value()
	gen := m.gen

	return func() tea.Msg {
		if pool == nil || database == nil || table == nil {
			return msg.RecordsLoadedMsg{Err: adapter.ErrNotConnected, Gen: gen}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		headers, rows, err := pool.GetRecords(ctx, database, table, 0, filter)
		if err != nil {
			return msg.RecordsLoadedMsg{Err: err, Gen: gen}
		}
		return msg.RecordsLoadedMsg{Headers: headers, Rows: rows, Gen: gen}
	}
}

func (m *Model) fetchNextPage() tea.Cmd {
	pool := m.shared.Get()
	database := m.database
	table := m.table
	filter := m.appliedFilter
	offset := m.grid.RowCount()
	gen := m.gen

	return func() tea.Msg {
		if pool == nil || database == nil || table == nil {
			return msg.RecordPageMsg{Err: adapter.ErrNotConnected, Gen: gen}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		_, rows, err := pool.GetRecords(ctx, database, table, offset, filter)
		if err != nil {
			return msg.RecordPageMsg{Err: err, Gen: gen}
		}
		return msg.RecordPageMsg{Rows: rows, Gen: gen}
	}
}

// CopySelected copies the selected cell to the clipboard.
func (m Model) CopySelected() {
	m.grid.CopySelected()
}

// EndOfData reports whether all pages have been fetched.
func (m Model) EndOfData() bool { return m.endOfData }

// RowCount returns the number of loaded rows.
func (m Model) RowCount() int { return m.grid.RowCount() }

// Grid exposes the grid for tests.
func (m *Model) Grid() *grid.Model { return &m.grid }

// Reset returns the component to its initial state.
func (m *Model) Reset() {
	m.filter.Reset()
	m.grid.Reset()
	m.database = nil
	m.table = nil
	m.appliedFilter = ""
	m.endOfData = false
	m.loading = false
	m.gridFocus = true
}

// Focus gives the component keyboard focus.
func (m *Model) Focus() {
	m.focused = true
	if m.gridFocus {
		m.grid.Focus()
	} else {
		m.filter.Focus()
	}
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.grid.Blur()
	m.filter.Blur()
}

// Focused reports whether the component has focus.
func (m Model) Focused() bool { return m.focused }

// SetSize sets the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.filter.SetWidth(w - 2)
	gridH := h - 1
	if gridH < 3 {
		gridH = 3
	}
	m.grid.SetSize(w, gridH)
}

// View renders the filter line, the grid, and the completion overlay.
func (m Model) View() string {
	th := theme.Current

	filterLine := m.filter.View()
	gridView := m.grid.View()

	if m.loading && m.grid.RowCount() == 0 {
		gridView = th.MutedText.Render(" loading records...")
	}

	view := lipgloss.JoinVertical(lipgloss.Left, filterLine, gridView)

	if overlay := m.filter.CompletionView(); overlay != "" {
		view = overlayBelowFirstLine(view, overlay)
	}
	return view
}

// overlayBelowFirstLine splices the dropdown under the filter line so it
// covers the grid instead of pushing it down.
func overlayBelowFirstLine(view, overlay string) string {
	viewLines := strings.Split(view, "\n")
	overlayLines := strings.Split(overlay, "\n")
	for i, ol := range overlayLines {
		target := 1 + i
		if target >= len(viewLines) {
			break
		}
		viewLines[target] = ol
	}
	return strings.Join(viewLines, "\n")
}
