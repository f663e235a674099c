// Package grid implements the read-only data grid shared by the record
// table, the properties sub-tabs and the editor result view: headers, string
// rows, a single selected cell, and scrolling that keeps the selection
// visible in both directions.
package grid

import (
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/andyslucky/gobang/internal/logging"
	"github.com/andyslucky/gobang/internal/theme"
)

const (
	minColWidth = 4
	maxColWidth = 50
)

// Model is the grid component.
type Model struct {
	headers []string
	rows    [][]string
	widths  []int

	selRow int
	selCol int

	rowOffset int
	colOffset int

	width   int
	height  int
	focused bool
}

// New creates an empty grid.
func New() Model {
	return Model{}
}

// SetData replaces headers and rows and resets the selection. Every row is
// expected to have exactly len(headers) cells.
func (m *Model) SetData(headers []string, rows [][]string) {
	m.headers = headers
	m.rows = rows
	m.selRow = 0
	m.selCol = 0
	m.rowOffset = 0
	m.colOffset = 0
	m.computeWidths()
}

// AppendRows adds rows below the existing ones, preserving the selection.
func (m *Model) AppendRows(rows [][]string) {
	m.rows = append(m.rows, rows...)
	m.computeWidths()
}

// Reset returns the grid to its empty state.
func (m *Model) Reset() {
	m.SetData(nil, nil)
}

// Update handles navigation keys. The returned bool reports consumption.
func (m Model) Update(msg tea.KeyMsg) (Model, bool) {
	if !m.focused || len(m.rows) == 0 {
		return m, false
	}

	switch msg.String() {
	case "up", "k":
		if m.selRow == 0 {
			// Bubble up so the container can move focus to the toolbar.
			return m, false
		}
		m.selRow--
	case "down", "j":
		if m.selRow < len(m.rows)-1 {
			m.selRow++
		}
	case "left", "h":
		if m.selCol > 0 {
			m.selCol--
		}
	case "right", "l":
		if m.selCol < len(m.headers)-1 {
			m.selCol++
		}
	case "pgup":
		m.selRow -= m.visibleRows()
		if m.selRow < 0 {
			m.selRow = 0
		}
	case "pgdown":
		m.selRow += m.visibleRows()
		if m.selRow > len(m.rows)-1 {
			m.selRow = len(m.rows) - 1
		}
	case "home", "g":
		m.selRow = 0
	case "end", "G":
		m.selRow = len(m.rows) - 1
	default:
		return m, false
	}

	m.ensureVisible()
	return m, true
}

// SelectedCell returns the value of the selected cell, or "".
func (m Model) SelectedCell() string {
	if m.selRow >= len(m.rows) {
		return ""
	}
	row := m.rows[m.selRow]
	if m.selCol >= len(row) {
		return ""
	}
	return row[m.selCol]
}

// CopySelected writes the selected cell to the system clipboard. Clipboard
// failures are logged, not surfaced.
func (m Model) CopySelected() {
	cell := m.SelectedCell()
	if cell == "" {
		return
	}
	if err := clipboard.WriteAll(cell); err != nil {
		logging.L().Warn("clipboard write failed", logging.Err(err))
	}
}

// Cursor returns the selected (row, col).
func (m Model) Cursor() (int, int) {
	return m.selRow, m.selCol
}

// SetCursorRow moves the row selection, clamped to the data.
func (m *Model) SetCursorRow(row int) {
	if row < 0 {
		row = 0
	}
	if row > len(m.rows)-1 {
		row = len(m.rows) - 1
	}
	m.selRow = row
	m.ensureVisible()
}

// AtLastRow reports whether the selection sits on the last loaded row.
func (m Model) AtLastRow() bool {
	return len(m.rows) > 0 && m.selRow == len(m.rows)-1
}

// RowCount returns the number of loaded rows.
func (m Model) RowCount() int {
	return len(m.rows)
}

// Headers returns the header labels.
func (m Model) Headers() []string {
	return m.headers
}

// Rows returns the loaded rows.
func (m Model) Rows() [][]string {
	return m.rows
}

// Focus gives the grid keyboard focus.
func (m *Model) Focus() { m.focused = true }

// Blur removes keyboard focus.
func (m *Model) Blur() { m.focused = false }

// Focused reports whether the grid has focus.
func (m Model) Focused() bool { return m.focused }

// SetSize sets the component dimensions, including the border.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.ensureVisible()
}

func (m *Model) computeWidths() {
	m.widths = make([]int, len(m.headers))
	for i, h := range m.headers {
		m.widths[i] = runewidth.StringWidth(h)
		if m.widths[i] < minColWidth {
			m.widths[i] = minColWidth
		}
	}

	// Sample up to 100 rows to estimate content widths.
	sample := len(m.rows)
	if sample > 100 {
		sample = 100
	}
	for r := 0; r < sample; r++ {
		for c := 0; c < len(m.widths) && c < len(m.rows[r]); c++ {
			if w := runewidth.StringWidth(m.rows[r][c]); w > m.widths[c] {
				m.widths[c] = w
			}
		}
	}
	for i := range m.widths {
		if m.widths[i] > maxColWidth {
			m.widths[i] = maxColWidth
		}
	}
}

func (m Model) contentWidth() int {
	w := m.width - 2
	if w < 10 {
		w = 10
	}
	return w
}

func (m Model) visibleRows() int {
	h := m.height - 2 - 2 // border + header row + header rule
	if h < 1 {
		h = 1
	}
	return h
}

// ensureVisible adjusts both scroll offsets so the selected cell stays on
// screen.
func (m *Model) ensureVisible() {
	visH := m.visibleRows()
	if m.selRow < m.rowOffset {
		m.rowOffset = m.selRow
	}
	if m.selRow >= m.rowOffset+visH {
		m.rowOffset = m.selRow - visH + 1
	}
	if m.rowOffset < 0 {
		m.rowOffset = 0
	}

	if m.selCol < m.colOffset {
		m.colOffset = m.selCol
	}
	for m.colOffset < m.selCol && !m.colVisible(m.selCol) {
		m.colOffset++
	}
}

// colVisible reports whether the column fits fully on screen at the current
// horizontal offset.
func (m Model) colVisible(col int) bool {
	used := 0
	for c := m.colOffset; c < len(m.widths); c++ {
		used += m.widths[c] + 2
		if c == col {
			return used <= m.contentWidth()
		}
	}
	return false
}

// View renders the grid inside a focus-dependent border.
func (m Model) View() string {
	th := theme.Current

	border := th.UnfocusedBorder
	if m.focused {
		border = th.FocusedBorder
	}

	innerW := m.width - 2
	innerH := m.height - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}

	if len(m.headers) == 0 {
		placeholder := th.MutedText.Render(" no rows")
		return border.Width(innerW).Height(innerH).Render(placeholder)
	}

	var sb strings.Builder
	contentW := m.contentWidth()

	// Header row and rule.
	sb.WriteString(m.renderRow(m.headers, th.GridHeader, th.GridHeader, -1, contentW))
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat("─", contentW))

	visH := m.visibleRows()
	for i := 0; i < visH; i++ {
		sb.WriteByte('\n')
		rowIdx := m.rowOffset + i
		if rowIdx >= len(m.rows) {
			sb.WriteString(strings.Repeat(" ", contentW))
			continue
		}

		base := th.GridCell
		if rowIdx%2 == 1 {
			base = th.GridCellAlt
		}
		selCol := -1
		if rowIdx == m.selRow {
			selCol = m.selCol
		}
		sb.WriteString(m.renderRow(m.rows[rowIdx], base, th.GridSelected, selCol, contentW))
	}

	return border.Width(innerW).Height(innerH).Render(sb.String())
}

// renderRow renders one row from the current column offset, highlighting
// selCol with the selected style when >= 0.
func (m Model) renderRow(cells []string, base, selected lipgloss.Style, selCol, totalWidth int) string {
	var sb strings.Builder
	used := 0
	for c := m.colOffset; c < len(m.widths); c++ {
		cellWidth := m.widths[c] + 2
		if used+cellWidth > totalWidth {
			break
		}

		var val string
		if c < len(cells) {
			val = cells[c]
		}
		text := runewidth.Truncate(val, m.widths[c], "…")
		text = " " + text + strings.Repeat(" ", m.widths[c]-runewidth.StringWidth(text)) + " "

		if c == selCol {
			sb.WriteString(selected.Render(text))
		} else {
			sb.WriteString(base.Render(text))
		}
		used += cellWidth
	}
	if used < totalWidth {
		sb.WriteString(strings.Repeat(" ", totalWidth-used))
	}
	return sb.String()
}
