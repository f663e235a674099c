// Package dialog implements the modal overlays: the error popup and the
// help screen built from the visible components' command lists.
package dialog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/andyslucky/gobang/internal/theme"
)

// Command is one entry of the help overlay: a key and what it does.
type Command struct {
	Key  string
	Name string
}

// ErrorModel is the modal error overlay.
type ErrorModel struct {
	message string
	visible bool
	width   int
	height  int
}

// NewError creates a hidden error overlay.
func NewError() ErrorModel {
	return ErrorModel{}
}

// Show displays the overlay with the given message.
func (m *ErrorModel) Show(message string) {
	m.message = message
	m.visible = true
}

// Hide dismisses the overlay.
func (m *ErrorModel) Hide() {
	m.visible = false
	m.message = ""
}

// Visible reports whether the overlay is shown.
func (m ErrorModel) Visible() bool { return m.visible }

// Message returns the displayed message.
func (m ErrorModel) Message() string { return m.message }

// SetSize sets the available screen area for centering.
func (m *ErrorModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the centered error box.
func (m ErrorModel) View() string {
	if !m.visible {
		return ""
	}

	th := theme.Current

	maxWidth := 60
	if m.width > 0 && maxWidth > m.width-4 {
		maxWidth = m.width - 4
	}

	body := lipgloss.NewStyle().Width(maxWidth).Render(m.message)
	content := lipgloss.JoinVertical(lipgloss.Left,
		th.DialogTitle.Render("Error"),
		"",
		body,
	)
	box := th.DialogBorder.Render(content)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// HelpModel is the command reference overlay.
type HelpModel struct {
	commands []Command
	visible  bool
	width    int
	height   int
}

// NewHelp creates a hidden help overlay.
func NewHelp() HelpModel {
	return HelpModel{}
}

// Show displays the overlay with the aggregated command list.
func (m *HelpModel) Show(commands []Command) {
	m.commands = commands
	m.visible = true
}

// Hide dismisses the overlay.
func (m *HelpModel) Hide() {
	m.visible = false
}

// Visible reports whether the overlay is shown.
func (m HelpModel) Visible() bool { return m.visible }

// SetSize sets the available screen area for centering.
func (m *HelpModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the centered command reference.
func (m HelpModel) View() string {
	if !m.visible {
		return ""
	}

	th := theme.Current

	var b strings.Builder
	b.WriteString(th.DialogTitle.Render("Commands"))
	b.WriteString("\n\n")
	for _, c := range m.commands {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			th.HelpKey.Render(fmt.Sprintf("%-14s", c.Key)),
			th.HelpDesc.Render(c.Name)))
	}

	box := th.DialogBorder.
		BorderForeground(lipgloss.Color("#569CD6")).
		Render(strings.TrimRight(b.String(), "\n"))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
