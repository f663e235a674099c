package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andyslucky/gobang/internal/completion"
)

func runes(s string) []tea.KeyMsg {
	var msgs []tea.KeyMsg
	for _, r := range s {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

func typeString(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, k := range runes(s) {
		var consumed bool
		m, consumed = m.Update(k)
		if !consumed {
			t.Fatalf("expected rune key to be consumed, got not consumed for %q", k.String())
		}
	}
	return m
}

func TestTyping(t *testing.T) {
	m := New("", "")
	m.Focus()

	m = typeString(t, m, "hello")
	if m.Value() != "hello" {
		t.Fatalf("expected value 'hello', got %q", m.Value())
	}
	if m.CursorPosition() != 5 {
		t.Fatalf("expected cursor 5, got %d", m.CursorPosition())
	}
}

func TestCursorInvariant(t *testing.T) {
	m := New("", "")
	m.Focus()
	m = typeString(t, m, "abc")

	keys := []tea.KeyMsg{
		{Type: tea.KeyLeft}, {Type: tea.KeyLeft}, {Type: tea.KeyLeft},
		{Type: tea.KeyLeft}, // past the start
		{Type: tea.KeyRight}, {Type: tea.KeyEnd}, {Type: tea.KeyRight},
		{Type: tea.KeyHome}, {Type: tea.KeyBackspace},
	}
	for _, k := range keys {
		m, _ = m.Update(k)
		pos := m.CursorPosition()
		if pos < 0 || pos > len([]rune(m.Value())) {
			t.Fatalf("cursor %d out of bounds for buffer %q", pos, m.Value())
		}
	}
}

func TestLastWordPart(t *testing.T) {
	m := New("", "")
	m.Focus()

	m = typeString(t, m, "SELECT * FROM us")
	if got := m.LastWordPart(); got != "us" {
		t.Fatalf("expected word part 'us', got %q", got)
	}

	m = typeString(t, m, " ")
	if got := m.LastWordPart(); got != "" {
		t.Fatalf("expected empty word part after space, got %q", got)
	}
}

func TestDeleteWordBackward(t *testing.T) {
	m := New("", "")
	m.Focus()
	m = typeString(t, m, "SELECT * FROM us")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlW})
	if m.Value() != "SELECT * FROM " {
		t.Fatalf("expected 'SELECT * FROM ', got %q", m.Value())
	}
}

func TestReplaceLastWordPartRoundTrip(t *testing.T) {
	m := New("", "")
	m.Focus()
	m = typeString(t, m, "SELECT * FROM us")

	m.ReplaceLastWordPart("users")
	if m.Value() != "SELECT * FROM users" {
		t.Fatalf("expected 'SELECT * FROM users', got %q", m.Value())
	}
	if got := m.LastWordPart(); got != "users" {
		t.Fatalf("expected word part 'users' after replace, got %q", got)
	}
	if m.CursorPosition() != len("SELECT * FROM users") {
		t.Fatalf("expected cursor at end of insertion, got %d", m.CursorPosition())
	}
}

func TestCompletionVisibility(t *testing.T) {
	m := New("", "")
	m.AttachCompletion(completion.NewKeywordSource())
	m.Focus()

	if m.CompletionVisible() {
		t.Fatal("expected completion hidden for empty buffer")
	}

	m = typeString(t, m, "an")
	if !m.CompletionVisible() {
		t.Fatal("expected completion visible for non-empty word")
	}

	candidates := m.Completion().Candidates()
	found := false
	for _, c := range candidates {
		if c == "AND" {
			found = true
		}
		if c == "FROM" {
			t.Fatalf("expected FROM excluded for prefix 'an', got candidates %v", candidates)
		}
	}
	if !found {
		t.Fatalf("expected AND in candidates, got %v", candidates)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.CompletionVisible() {
		t.Fatal("expected completion hidden once the word is empty")
	}
}

func TestCompletionCommit(t *testing.T) {
	m := New("", "")
	m.AttachCompletion(completion.NewKeywordSource())
	m.Focus()

	m = typeString(t, m, "an")
	m, consumed := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if !consumed {
		t.Fatal("expected tab consumed while completion visible")
	}
	if m.Value() != "AND" {
		t.Fatalf("expected buffer 'AND' after commit, got %q", m.Value())
	}
}

func TestCompletionEscape(t *testing.T) {
	m := New("", "")
	m.AttachCompletion(completion.NewKeywordSource())
	m.Focus()

	m = typeString(t, m, "se")
	if !m.CompletionVisible() {
		t.Fatal("expected completion visible")
	}

	m, consumed := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !consumed {
		t.Fatal("expected esc consumed while completion visible")
	}
	if m.CompletionVisible() {
		t.Fatal("expected completion hidden after esc")
	}
	if m.Value() != "se" {
		t.Fatalf("expected buffer unchanged after esc, got %q", m.Value())
	}
}

func TestEnterBubblesWithoutCompletion(t *testing.T) {
	m := New("", "")
	m.Focus()
	m = typeString(t, m, "id = 1")

	m, consumed := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if consumed {
		t.Fatal("expected enter to bubble up when no completion is visible")
	}
}

func TestBlurredIgnoresKeys(t *testing.T) {
	m := New("", "")
	m, consumed := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if consumed {
		t.Fatal("expected blurred input to ignore keys")
	}
	if m.Value() != "" {
		t.Fatalf("expected empty value, got %q", m.Value())
	}
}

func TestReset(t *testing.T) {
	m := New("", "")
	m.AttachCompletion(completion.NewKeywordSource())
	m.Focus()
	m = typeString(t, m, "sel")

	m.Reset()
	if m.Value() != "" {
		t.Fatalf("expected empty value after reset, got %q", m.Value())
	}
	if m.CompletionVisible() {
		t.Fatal("expected completion hidden after reset")
	}
}
