// Package dropdown implements the completion dropdown: a small overlay of
// candidate strings driven by the word under the cursor.
package dropdown

import (
	"context"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/andyslucky/gobang/internal/completion"
	"github.com/andyslucky/gobang/internal/logging"
	"github.com/andyslucky/gobang/internal/theme"
)

const (
	// Width is the fixed overlay width in columns.
	Width = 30
	// MaxVisible bounds the overlay height in rows.
	MaxVisible = 5
)

// Model holds the candidate buffer and selection. The dropdown is visible
// when the driving word is non-empty, unless Hide was called since the last
// Update.
type Model struct {
	source     completion.Source
	word       string
	candidates []string
	selected   int
	hidden     bool
}

// New creates a dropdown over the given source.
func New(source completion.Source) Model {
	return Model{source: source}
}

// SetSource replaces the candidate source.
func (m *Model) SetSource(source completion.Source) {
	m.source = source
}

// Update recomputes candidates for the new word part. Source failures are
// logged and degrade to an empty candidate list; they never abort the key
// cycle. Selection resets to the first candidate when any exist.
func (m *Model) Update(wordPart string) {
	m.word = wordPart
	m.hidden = false
	m.candidates = nil
	m.selected = -1

	if wordPart == "" || m.source == nil {
		return
	}

	candidates, err := m.source.Suggestions(context.Background(), wordPart)
	if err != nil {
		logging.L().Warn("completion source failed", logging.Err(err))
		return
	}
	m.candidates = candidates
	if len(m.candidates) > 0 {
		m.selected = 0
	}
}

// Visible reports whether the dropdown is shown: the driving word is
// non-empty and it was not explicitly hidden.
func (m Model) Visible() bool {
	return m.word != "" && !m.hidden
}

// Hide hides the dropdown without committing; the next Update shows it
// again.
func (m *Model) Hide() {
	m.hidden = true
}

// MoveUp moves the selection up, saturating at the first candidate.
func (m *Model) MoveUp() {
	if m.selected > 0 {
		m.selected--
	}
}

// MoveDown moves the selection down, saturating at the last candidate.
func (m *Model) MoveDown() {
	if m.selected >= 0 && m.selected < len(m.candidates)-1 {
		m.selected++
	}
}

// Selected returns the selected candidate, or "" when none.
func (m Model) Selected() string {
	if m.selected < 0 || m.selected >= len(m.candidates) {
		return ""
	}
	return m.candidates[m.selected]
}

// Candidates returns the current candidate buffer.
func (m Model) Candidates() []string {
	return m.candidates
}

// Word returns the driving word part.
func (m Model) Word() string {
	return m.word
}

// Reset returns the dropdown to its initial state.
func (m *Model) Reset() {
	m.word = ""
	m.candidates = nil
	m.selected = -1
	m.hidden = false
}

// View renders the overlay. An empty string is returned when nothing should
// be drawn.
func (m Model) View() string {
	if !m.Visible() || len(m.candidates) == 0 {
		return ""
	}

	th := theme.Current

	visible := m.candidates
	offset := 0
	if len(visible) > MaxVisible {
		if m.selected >= MaxVisible {
			offset = m.selected - MaxVisible + 1
		}
		end := offset + MaxVisible
		if end > len(visible) {
			end = len(visible)
		}
		visible = visible[offset:end]
	}

	innerW := Width - 2
	var lines []string
	for i, cand := range visible {
		label := runewidth.Truncate(cand, innerW, "…")
		label += strings.Repeat(" ", innerW-runewidth.StringWidth(label))
		if offset+i == m.selected {
			lines = append(lines, th.DropdownSelected.Render(label))
		} else {
			lines = append(lines, th.DropdownItem.Render(label))
		}
	}

	return th.DropdownBorder.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
