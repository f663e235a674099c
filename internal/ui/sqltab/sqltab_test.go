package sqltab

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/msg"
	"github.com/andyslucky/gobang/internal/schema"
)

type fakePool struct {
	adapter.Pool

	result *adapter.ExecuteResult
	err    error
	query  string
}

func (f *fakePool) Execute(ctx context.Context, query string) (*adapter.ExecuteResult, error) {
	f.query = query
	return f.result, f.err
}

func (f *fakePool) GetKeywords() []string { return adapter.DefaultKeywords }

func (f *fakePool) GetDatabases(ctx context.Context) ([]schema.Database, error) {
	return nil, nil
}

func (f *fakePool) Close() {}

func newTab(pool *fakePool) Model {
	shared := adapter.NewSharedPool()
	if pool != nil {
		shared.Swap(pool)
	}
	m := New(1, shared, "f5")
	m.SetSize(80, 30)
	m.Focus()
	return m
}

func typeString(m Model, s string) Model {
	for _, r := range s {
		m, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestF5EmitsExecuteQuery(t *testing.T) {
	m := newTab(&fakePool{})
	m = typeString(m, "SELECT 1")

	m, cmd, consumed := m.Update(tea.KeyMsg{Type: tea.KeyF5})
	if !consumed {
		t.Fatal("expected f5 consumed")
	}
	if cmd == nil {
		t.Fatal("expected a command from f5")
	}

	exec, ok := cmd().(msg.ExecuteQueryMsg)
	if !ok {
		t.Fatalf("expected ExecuteQueryMsg, got %T", cmd())
	}
	if exec.Query != "SELECT 1" {
		t.Fatalf("expected whole buffer emitted, got %q", exec.Query)
	}
	if exec.TabID != 1 {
		t.Fatalf("expected tab id 1, got %d", exec.TabID)
	}
}

func TestF5EmptyBufferIgnored(t *testing.T) {
	m := newTab(&fakePool{})
	_, cmd, _ := m.Update(tea.KeyMsg{Type: tea.KeyF5})
	if cmd != nil {
		t.Fatal("expected no command for an empty buffer")
	}
}

func TestExecuteReadPopulatesResult(t *testing.T) {
	pool := &fakePool{
		result: adapter.NewReadResult([]string{"1"}, [][]string{{"1"}}),
	}
	m := newTab(pool)
	m = typeString(m, "SELECT 1")

	cmd := m.ExecuteCmd("SELECT 1")
	result := cmd().(msg.QueryResultMsg)
	m.HandleQueryResult(result)

	if pool.query != "SELECT 1" {
		t.Fatalf("expected query passed through, got %q", pool.query)
	}
	if m.Result().RowCount() != 1 {
		t.Fatalf("expected 1 result row, got %d", m.Result().RowCount())
	}
	if m.Result().SelectedCell() != "1" {
		t.Fatalf("expected single cell '1', got %q", m.Result().SelectedCell())
	}
	if !m.resultFocus {
		t.Fatal("expected focus moved to the result grid")
	}
}

func TestExecuteWriteShowsMessage(t *testing.T) {
	pool := &fakePool{result: adapter.NewWriteResult(3)}
	m := newTab(pool)

	cmd := m.ExecuteCmd("UPDATE t SET a = 1")
	m.HandleQueryResult(cmd().(msg.QueryResultMsg))

	if m.writeMessage != "Query OK, 3 row affected" {
		t.Fatalf("unexpected write message %q", m.writeMessage)
	}
	if !strings.Contains(m.View(), "Query OK, 3 row affected") {
		t.Fatal("expected write message rendered")
	}
}

func TestExecuteErrorKeepsState(t *testing.T) {
	pool := &fakePool{
		result: adapter.NewReadResult([]string{"id"}, [][]string{{"7"}}),
	}
	m := newTab(pool)
	m = typeString(m, "SELECT id FROM t")

	cmd := m.ExecuteCmd("SELECT id FROM t")
	m.HandleQueryResult(cmd().(msg.QueryResultMsg))
	if m.Result().RowCount() != 1 {
		t.Fatalf("expected 1 row, got %d", m.Result().RowCount())
	}

	pool.err = errors.New("syntax error")
	pool.result = nil
	cmd = m.ExecuteCmd("SELEC nonsense")
	result := cmd().(msg.QueryResultMsg)
	if result.Err == nil {
		t.Fatal("expected error result")
	}
	m.HandleQueryResult(result)

	// The previous result is untouched and the editor content preserved.
	if m.Result().RowCount() != 1 {
		t.Fatalf("expected previous result kept, got %d rows", m.Result().RowCount())
	}
	if m.Editor().Value() != "SELECT id FROM t" {
		t.Fatalf("expected editor buffer preserved, got %q", m.Editor().Value())
	}
	if m.Executing() {
		t.Fatal("expected executing cleared after error")
	}
}

func TestExecuteWithoutPool(t *testing.T) {
	m := newTab(nil)
	cmd := m.ExecuteCmd("SELECT 1")
	result := cmd().(msg.QueryResultMsg)
	if result.Err == nil {
		t.Fatal("expected not-connected error")
	}
}

func TestEscFromResultReturnsToEditor(t *testing.T) {
	pool := &fakePool{
		result: adapter.NewReadResult([]string{"1"}, [][]string{{"1"}}),
	}
	m := newTab(pool)
	cmd := m.ExecuteCmd("SELECT 1")
	m.HandleQueryResult(cmd().(msg.QueryResultMsg))
	if !m.resultFocus {
		t.Fatal("expected result focused")
	}

	m, _, consumed := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !consumed {
		t.Fatal("expected esc consumed by result view")
	}
	if m.resultFocus {
		t.Fatal("expected focus back on the editor")
	}
}
