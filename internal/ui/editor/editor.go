// Package editor implements the multi-line SQL editor: a bubbles/textarea
// carrying the line buffer and cursor plus an embedded completion dropdown.
// Line editing (splits, merges, clamped movement, Home/End navigation) is
// handled by the textarea; this wrapper adds completion and the submit
// contract.
package editor

import (
	"regexp"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andyslucky/gobang/internal/completion"
	"github.com/andyslucky/gobang/internal/theme"
	"github.com/andyslucky/gobang/internal/ui/dropdown"
)

var wordBoundary = regexp.MustCompile(`\W`)

// Model is the SQL editor component.
type Model struct {
	textarea   textarea.Model
	completion dropdown.Model
	width      int
	height     int
	focused    bool
}

// New creates an editor with the given completion source.
func New(source completion.Source) Model {
	ta := textarea.New()
	ta.Placeholder = "Enter SQL query..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.Blur()

	return Model{
		textarea:   ta,
		completion: dropdown.New(source),
	}
}

// Init returns the textarea blink command so the cursor blinks when focused.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// SetCompletionSource swaps the completion source, e.g. after a table
// selection makes new columns available.
func (m *Model) SetCompletionSource(source completion.Source) {
	m.completion.SetSource(source)
}

// Update processes one key. The returned bool reports whether the key was
// consumed: Tab with no visible completion and Esc bubble up so the
// container can reinterpret them.
func (m Model) Update(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if !m.focused {
		return m, nil, false
	}

	if m.completion.Visible() {
		switch msg.String() {
		case "up":
			m.completion.MoveUp()
			return m, nil, true
		case "down":
			m.completion.MoveDown()
			return m, nil, true
		case "enter", "tab":
			if cand := m.completion.Selected(); cand != "" {
				m.commitCandidate(cand)
				return m, nil, true
			}
		case "esc":
			m.completion.Hide()
			return m, nil, true
		}
	}

	switch msg.String() {
	case "tab", "esc":
		return m, nil, false
	}

	before := m.textarea.Value()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)

	if m.textarea.Value() != before {
		m.completion.Update(m.lastWordPart())
	}
	return m, cmd, true
}

// lastWordPart returns the word part at the end of the buffer. The textarea
// does not expose the cursor offset into the underlying string, so the
// buffer tail approximates the text up to the cursor; completion is only
// meaningful while typing at the end anyway.
func (m Model) lastWordPart() string {
	value := m.textarea.Value()
	start := 0
	if locs := wordBoundary.FindAllStringIndex(value, -1); len(locs) > 0 {
		start = locs[len(locs)-1][1]
	}
	return value[start:]
}

// commitCandidate replaces the trailing word part with the candidate and a
// following space, cursor at the end of the insertion.
func (m *Model) commitCandidate(cand string) {
	value := m.textarea.Value()
	word := m.lastWordPart()
	value = value[:len(value)-len(word)] + cand + " "
	m.textarea.SetValue(value)
	m.completion.Update("")
}

// Value returns the whole buffer, the unit of execution for F5.
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetValue replaces the buffer.
func (m *Model) SetValue(s string) {
	m.textarea.SetValue(s)
	m.completion.Update("")
}

// CompletionVisible reports whether the dropdown is shown.
func (m Model) CompletionVisible() bool {
	return m.completion.Visible()
}

// Completion exposes the dropdown for tests and containers.
func (m *Model) Completion() *dropdown.Model {
	return &m.completion
}

// Focus gives the editor keyboard focus.
func (m *Model) Focus() {
	m.focused = true
	m.textarea.Focus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.textarea.Blur()
}

// Focused reports whether the editor has focus.
func (m Model) Focused() bool {
	return m.focused
}

// Reset clears the buffer and completion state.
func (m *Model) Reset() {
	m.textarea.Reset()
	m.completion.Reset()
}

// SetSize updates the editor dimensions, including the border.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h

	innerW := w - 2
	innerH := h - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}
	m.textarea.SetWidth(innerW)
	m.textarea.SetHeight(innerH)
}

// View renders the editor inside a focus-dependent border. The completion
// dropdown is not drawn here; containers overlay Completion().View() on the
// editor's bottom lines.
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

	view := border.Width(innerW).Height(innerH).Render(m.textarea.View())
	return view
}
