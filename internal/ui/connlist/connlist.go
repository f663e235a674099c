// Package connlist implements the connection picker: a selectable list of
// the configured connections shown until a pool is established.
package connlist

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andyslucky/gobang/internal/config"
	"github.com/andyslucky/gobang/internal/msg"
	"github.com/andyslucky/gobang/internal/theme"
	"github.com/andyslucky/gobang/internal/ui/dialog"
)

// Model is the connection picker component.
type Model struct {
	connections []config.Connection
	selected    int
	width       int
	height      int
	focused     bool
}

// New creates a picker over the configured connections.
func New(connections []config.Connection) Model {
	return Model{connections: connections}
}

// Update handles keys. Enter emits ConnectionChangedMsg for the selection.
func (m Model) Update(keyMsg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if !m.focused {
		return m, nil, false
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil, true
	case "down", "j":
		if m.selected < len(m.connections)-1 {
			m.selected++
		}
		return m, nil, true
	case "home", "g":
		m.selected = 0
		return m, nil, true
	case "end", "G":
		if len(m.connections) > 0 {
			m.selected = len(m.connections) - 1
		}
		return m, nil, true
	case "enter":
		if m.selected < len(m.connections) {
			conn := m.connections[m.selected]
			return m, func() tea.Msg {
				return msg.ConnectionChangedMsg{Conn: &conn}
			}, true
		}
		return m, nil, true
	}
	return m, nil, false
}

// Selected returns the highlighted connection, or nil.
func (m Model) Selected() *config.Connection {
	if m.selected < 0 || m.selected >= len(m.connections) {
		return nil
	}
	return &m.connections[m.selected]
}

// Reset returns the selection to the first entry.
func (m *Model) Reset() {
	m.selected = 0
}

// Commands lists the picker's help entries.
func (m Model) Commands() []dialog.Command {
	return []dialog.Command{
		{Key: "↑/↓", Name: "move selection"},
		{Key: "enter", Name: "connect"},
	}
}

// Focus gives the picker keyboard focus.
func (m *Model) Focus() { m.focused = true }

// Blur removes keyboard focus.
func (m *Model) Blur() { m.focused = false }

// Focused reports whether the picker has focus.
func (m Model) Focused() bool { return m.focused }

// SetSize sets the available screen area for centering.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the centered list.
func (m Model) View() string {
	th := theme.Current

	var lines []string
	if len(m.connections) == 0 {
		lines = append(lines, th.MutedText.Render("no connections configured"))
	}
	for i, c := range m.connections {
		line := c.DisplayString()
		if i == m.selected {
			lines = append(lines, th.TreeSelected.Render(line))
		} else {
			lines = append(lines, th.TreeTable.Render(line))
		}
	}

	box := th.FocusedBorder.Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
