// Package sqltab implements one SQL editor tab: a multi-line editor, an
// embedded result viewer, and a reference to the shared pool.
package sqltab

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/completion"
	"github.com/andyslucky/gobang/internal/msg"
	"github.com/andyslucky/gobang/internal/schema"
	"github.com/andyslucky/gobang/internal/theme"
	"github.com/andyslucky/gobang/internal/ui/editor"
	"github.com/andyslucky/gobang/internal/ui/grid"
)

// Model is one SQL editor tab.
type Model struct {
	id     int
	shared *adapter.SharedPool
	source *completion.PoolSource

	editor editor.Model
	result grid.Model

	writeMessage string
	executing    bool
	gen          uint64

	execKey string

	width       int
	height      int
	focused     bool
	resultFocus bool
}

// New creates an editor tab. execKey is the configured execute binding; F5
// always works.
func New(id int, shared *adapter.SharedPool, execKey string) Model {
	source := completion.NewPoolSource(shared)
	return Model{
		id:      id,
		shared:  shared,
		source:  source,
		editor:  editor.New(source),
		result:  grid.New(),
		execKey: execKey,
	}
}

// ID returns the tab identifier.
func (m Model) ID() int { return m.id }

// Source exposes the pool-backed completion source for refreshes.
func (m *Model) Source() *completion.PoolSource { return m.source }

// OnTableSelected repoints the completion scope; the next refresh makes the
// new table's columns available.
func (m *Model) OnTableSelected(database schema.Database, table schema.Table) {
	db := database
	t := table
	m.source.SetScope(&db, &t)
}

// Update handles keys. The returned bool reports consumption; Esc with the
// editor focused bubbles so the container takes focus back.
func (m Model) Update(keyMsg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if !m.focused {
		return m, nil, false
	}

	key := keyMsg.String()
	if key == "f5" || (m.execKey != "" && key == m.execKey) {
		query := m.editor.Value()
		if query == "" || m.executing {
			return m, nil, true
		}
		id := m.id
		return m, func() tea.Msg {
			return msg.ExecuteQueryMsg{TabID: id, Query: query}
		}, true
	}

	if m.resultFocus {
		switch key {
		case "esc":
			m.resultFocus = false
			m.result.Blur()
			m.editor.Focus()
			return m, nil, true
		}
		var consumed bool
		m.result, consumed = m.result.Update(keyMsg)
		return m, nil, consumed
	}

	var cmd tea.Cmd
	var consumed bool
	m.editor, cmd, consumed = m.editor.Update(keyMsg)
	return m, cmd, consumed
}

// ExecuteCmd runs the query against the pool and reports the result.
func (m *Model) ExecuteCmd(query string) tea.Cmd {
	pool := m.shared.Get()
	m.executing = true
	m.gen++
	gen := m.gen
	id := m.id

	return func() tea.Msg {
		if pool == nil {
			return msg.QueryResultMsg{TabID: id, Err: adapter.ErrNotConnected, Gen: gen}
		}
		result, err := pool.Execute(context.Background(), query)
		if err != nil {
			return msg.QueryResultMsg{TabID: id, Err: err, Gen: gen}
		}
		return msg.QueryResultMsg{
			TabID:       id,
			Headers:     result.Headers,
			Rows:        result.Rows,
			UpdatedRows: result.UpdatedRows,
			IsRead:      result.IsRead,
			Gen:         gen,
		}
	}
}

// HandleQueryResult applies an execution outcome. Reads populate the result
// grid and move focus there; writes show the affected row count. On error
// the tab stays as it was.
func (m *Model) HandleQueryResult(result msg.QueryResultMsg) {
	if result.TabID != m.id || result.Gen != m.gen {
		return
	}
	m.executing = false
	if result.Err != nil {
		return
	}

	if result.IsRead {
		m.writeMessage = ""
		m.result.SetData(result.Headers, result.Rows)
		if m.focused {
			m.editor.Blur()
			m.resultFocus = true
			m.result.Focus()
		}
		return
	}

	m.writeMessage = fmt.Sprintf("Query OK, %d row affected", result.UpdatedRows)
	m.result.Reset()
}

// Executing reports whether a query is in flight.
func (m Model) Executing() bool { return m.executing }

// Editor exposes the editor for tests.
func (m *Model) Editor() *editor.Model { return &m.editor }

// Result exposes the result grid for tests.
func (m *Model) Result() *grid.Model { return &m.result }

// CopySelected copies the selected result cell.
func (m Model) CopySelected() {
	if m.resultFocus {
		m.result.CopySelected()
	}
}

// Reset returns the tab to its initial state.
func (m *Model) Reset() {
	m.editor.Reset()
	m.result.Reset()
	m.writeMessage = ""
	m.executing = false
	m.resultFocus = false
}

// Focus gives the tab keyboard focus.
func (m *Model) Focus() {
	m.focused = true
	if m.resultFocus {
		m.result.Focus()
	} else {
		m.editor.Focus()
	}
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.editor.Blur()
	m.result.Blur()
}

// Focused reports whether the tab has focus.
func (m Model) Focused() bool { return m.focused }

// SetSize sets the tab dimensions; the editor takes the upper half.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h

	editorH := h / 2
	if editorH < 3 {
		editorH = 3
	}
	resultH := h - editorH
	if resultH < 3 {
		resultH = 3
	}
	m.editor.SetSize(w, editorH)
	m.result.SetSize(w, resultH)
}

// View renders the editor above the result area.
func (m Model) View() string {
	th := theme.Current

	editorView := m.editor.View()
	if overlay := m.editor.Completion().View(); overlay != "" {
		editorView = overlayBottom(editorView, overlay)
	}

	var resultView string
	switch {
	case m.executing:
		resultView = th.MutedText.Render(" executing...")
	case m.writeMessage != "":
		resultView = th.SuccessText.Render(" " + m.writeMessage)
	default:
		resultView = m.result.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, editorView, resultView)
}

// overlayBottom replaces the bottom lines of view with the overlay so the
// dropdown never pushes content off-screen.
func overlayBottom(view, overlay string) string {
	viewLines := strings.Split(view, "\n")
	overlayLines := strings.Split(overlay, "\n")
	if len(overlayLines) >= len(viewLines) {
		return view
	}
	base := len(viewLines) - len(overlayLines)
	for i, ol := range overlayLines {
		viewLines[base+i] = ol
	}
	return strings.Join(viewLines, "\n")
}
