// Package input wraps bubbles/textinput into the single-line input widget
// used by the filter boxes: an optional label prefix, placeholder text, and
// an optional completion dropdown driven by the word part under the cursor.
package input

import (
	"regexp"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andyslucky/gobang/internal/completion"
	"github.com/andyslucky/gobang/internal/theme"
	"github.com/andyslucky/gobang/internal/ui/dropdown"
)

// wordBoundary matches any non-word character; the word part is the text
// between the last boundary before the cursor and the cursor.
var wordBoundary = regexp.MustCompile(`\W`)

// Model is the single-line input widget.
type Model struct {
	input      textinput.Model
	label      string
	completion *dropdown.Model
	focused    bool
}

// New creates an input with the given label prefix and placeholder. Either
// may be empty.
func New(label, placeholder string) Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.PlaceholderStyle = theme.Current.Placeholder

	// Word operations on top of the defaults.
	ti.KeyMap.WordBackward = key.NewBinding(key.WithKeys("ctrl+left", "alt+left", "alt+b"))
	ti.KeyMap.WordForward = key.NewBinding(key.WithKeys("ctrl+right", "alt+right", "alt+f"))
	ti.KeyMap.DeleteWordBackward = key.NewBinding(key.WithKeys("ctrl+backspace", "ctrl+w", "alt+backspace"))
	ti.KeyMap.LineStart = key.NewBinding(key.WithKeys("home", "ctrl+home", "ctrl+a"))
	ti.KeyMap.LineEnd = key.NewBinding(key.WithKeys("end", "ctrl+end", "ctrl+e"))

	return Model{input: ti, label: label}
}

// AttachCompletion wires a completion dropdown to the input. The dropdown is
// updated after every buffer mutation with the current word part.
func (m *Model) AttachCompletion(source completion.Source) {
	dd := dropdown.New(source)
	m.completion = &dd
}

// SetCompletionSource swaps the source of the attached dropdown, if any.
func (m *Model) SetCompletionSource(source completion.Source) {
	if m.completion != nil {
		m.completion.SetSource(source)
	}
}

// Update processes one key. The returned bool reports whether the key was
// consumed; Enter and Tab bubble up when no completion is visible so the
// container decides what they mean.
func (m Model) Update(msg tea.KeyMsg) (Model, bool) {
	if !m.focused {
		return m, false
	}

	if m.completion != nil && m.completion.Visible() {
		switch msg.String() {
		case "up":
			m.completion.MoveUp()
			return m, true
		case "down":
			m.completion.MoveDown()
			return m, true
		case "enter", "tab":
			if cand := m.completion.Selected(); cand != "" {
				m.ReplaceLastWordPart(cand)
				return m, true
			}
		case "esc":
			m.completion.Hide()
			return m, true
		}
	}

	switch msg.String() {
	case "enter", "tab", "esc":
		return m, false
	}

	before := m.input.Value()
	beforePos := m.input.Position()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	_ = cmd // the cursor blink command is not propagated

	if m.completion != nil && (m.input.Value() != before || m.input.Position() != beforePos) {
		m.completion.Update(m.LastWordPart())
	}
	return m, true
}

// LastWordPart returns the text between the last word boundary before the
// cursor and the cursor.
func (m Model) LastWordPart() string {
	runes := []rune(m.input.Value())
	pos := m.input.Position()
	if pos > len(runes) {
		pos = len(runes)
	}
	before := string(runes[:pos])

	start := 0
	if locs := wordBoundary.FindAllStringIndex(before, -1); len(locs) > 0 {
		start = locs[len(locs)-1][1]
	}
	return before[start:]
}

// ReplaceLastWordPart replaces the last-word-part range with text and moves
// the cursor to the end of the insertion.
func (m *Model) ReplaceLastWordPart(text string) {
	runes := []rune(m.input.Value())
	pos := m.input.Position()
	if pos > len(runes) {
		pos = len(runes)
	}

	wordLen := len([]rune(m.LastWordPart()))
	start := pos - wordLen

	newValue := string(runes[:start]) + text + string(runes[pos:])
	m.input.SetValue(newValue)
	m.input.SetCursor(start + len([]rune(text)))

	if m.completion != nil {
		m.completion.Update(m.LastWordPart())
	}
}

// Value returns the buffer contents.
func (m Model) Value() string {
	return m.input.Value()
}

// SetValue replaces the buffer and moves the cursor to its end.
func (m *Model) SetValue(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
	if m.completion != nil {
		m.completion.Update(m.LastWordPart())
	}
}

// CursorPosition returns the cursor index in characters.
func (m Model) CursorPosition() int {
	return m.input.Position()
}

// CompletionVisible reports whether the attached dropdown is shown.
func (m Model) CompletionVisible() bool {
	return m.completion != nil && m.completion.Visible()
}

// CompletionView renders the dropdown overlay, or "".
func (m Model) CompletionView() string {
	if m.completion == nil {
		return ""
	}
	return m.completion.View()
}

// Completion exposes the attached dropdown for tests and containers.
func (m *Model) Completion() *dropdown.Model {
	return m.completion
}

// Focus gives the input keyboard focus.
func (m *Model) Focus() {
	m.focused = true
	m.input.Focus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
}

// Focused reports whether the input has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetWidth sets the rendered width in columns.
func (m *Model) SetWidth(w int) {
	label := lipgloss.Width(m.label)
	if w-label > 0 {
		m.input.Width = w - label
	}
}

// Reset returns the input to its initial state.
func (m *Model) Reset() {
	m.input.Reset()
	if m.completion != nil {
		m.completion.Reset()
	}
}

// View renders the label and the input line.
func (m Model) View() string {
	if m.label == "" {
		return m.input.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		theme.Current.InputLabel.Render(m.label), m.input.View())
}
