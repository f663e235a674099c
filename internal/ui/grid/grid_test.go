package grid

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func sampleGrid() Model {
	m := New()
	m.SetSize(80, 20)
	m.SetData(
		[]string{"id", "name"},
		[][]string{{"1", "alice"}, {"2", "bob"}, {"3", "carol"}},
	)
	m.Focus()
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestSelectionMoves(t *testing.T) {
	m := sampleGrid()

	m, _ = m.Update(key("down"))
	row, col := m.Cursor()
	if row != 1 || col != 0 {
		t.Fatalf("expected (1,0), got (%d,%d)", row, col)
	}

	m, _ = m.Update(key("right"))
	_, col = m.Cursor()
	if col != 1 {
		t.Fatalf("expected col 1, got %d", col)
	}
	if m.SelectedCell() != "bob" {
		t.Fatalf("expected 'bob', got %q", m.SelectedCell())
	}
}

func TestSelectionClamps(t *testing.T) {
	m := sampleGrid()

	// Right beyond the last column saturates.
	for i := 0; i < 5; i++ {
		m, _ = m.Update(key("right"))
	}
	_, col := m.Cursor()
	if col != 1 {
		t.Fatalf("expected col clamped to 1, got %d", col)
	}

	// Down beyond the last row saturates.
	for i := 0; i < 10; i++ {
		m, _ = m.Update(key("down"))
	}
	row, _ := m.Cursor()
	if row != 2 {
		t.Fatalf("expected row clamped to 2, got %d", row)
	}
}

func TestUpAtTopBubbles(t *testing.T) {
	m := sampleGrid()

	_, consumed := m.Update(key("up"))
	if consumed {
		t.Fatal("expected up at first row to bubble to the container")
	}
}

func TestHomeEnd(t *testing.T) {
	m := sampleGrid()

	m, _ = m.Update(key("end"))
	row, _ := m.Cursor()
	if row != 2 {
		t.Fatalf("expected last row, got %d", row)
	}
	if !m.AtLastRow() {
		t.Fatal("expected AtLastRow")
	}

	m, _ = m.Update(key("home"))
	row, _ = m.Cursor()
	if row != 0 {
		t.Fatalf("expected first row, got %d", row)
	}
}

func TestAppendRows(t *testing.T) {
	m := sampleGrid()
	m, _ = m.Update(key("down"))

	m.AppendRows([][]string{{"4", "dave"}})
	if m.RowCount() != 4 {
		t.Fatalf("expected 4 rows, got %d", m.RowCount())
	}
	row, _ := m.Cursor()
	if row != 1 {
		t.Fatalf("expected selection preserved at 1, got %d", row)
	}
}

func TestHeaderRowInvariant(t *testing.T) {
	m := sampleGrid()
	for _, row := range m.Rows() {
		if len(row) != len(m.Headers()) {
			t.Fatalf("row width %d != header count %d", len(row), len(m.Headers()))
		}
	}
}

func TestReset(t *testing.T) {
	m := sampleGrid()
	m.Reset()
	if m.RowCount() != 0 {
		t.Fatalf("expected empty grid, got %d rows", m.RowCount())
	}
	if m.SelectedCell() != "" {
		t.Fatalf("expected no selected cell, got %q", m.SelectedCell())
	}
}

func TestBlurredIgnoresKeys(t *testing.T) {
	m := sampleGrid()
	m.Blur()

	next, consumed := m.Update(key("down"))
	if consumed {
		t.Fatal("expected blurred grid to ignore keys")
	}
	row, _ := next.Cursor()
	if row != 0 {
		t.Fatalf("expected unchanged selection, got row %d", row)
	}
}

func TestViewRenders(t *testing.T) {
	m := sampleGrid()
	if m.View() == "" {
		t.Fatal("expected non-empty view")
	}

	empty := New()
	empty.SetSize(40, 10)
	if empty.View() == "" {
		t.Fatal("expected placeholder view for empty grid")
	}
}
