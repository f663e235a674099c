package dbtree

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andyslucky/gobang/internal/msg"
	"github.com/andyslucky/gobang/internal/schema"
)

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
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func sampleDatabases() []schema.Database {
	return []schema.Database{
		{
			Name: "shop",
			Children: []schema.Child{
				{Table: &schema.Table{Name: "orders", Database: "shop"}},
				{Table: &schema.Table{Name: "users", Database: "shop"}},
			},
		},
	}
}

func twoDatabases() []schema.Database {
	dbs := sampleDatabases()
	return append(dbs, schema.Database{
		Name: "analytics",
		Children: []schema.Child{
			{Schema: &schema.Schema{
				Name: "public",
				Tables: []schema.Table{
					{Name: "events", Schema: "public", Database: "analytics"},
				},
			}},
		},
	})
}

func focused(dbs []schema.Database) Model {
	m := New()
	m.SetSize(30, 20)
	m.SetDatabases(dbs)
	m.Focus()
	return m
}

func TestSingleDatabaseAutoExpands(t *testing.T) {
	m := focused(sampleDatabases())

	// database + 2 tables visible
	if len(m.flat) != 3 {
		t.Fatalf("expected 3 visible rows, got %d", len(m.flat))
	}
}

func TestMultipleDatabasesCollapsed(t *testing.T) {
	m := focused(twoDatabases())

	if len(m.flat) != 2 {
		t.Fatalf("expected 2 collapsed roots, got %d", len(m.flat))
	}
}

func TestExpandCollapse(t *testing.T) {
	m := focused(twoDatabases())

	m, _, _ = m.Update(key("right")) // expand shop
	if len(m.flat) != 4 {
		t.Fatalf("expected 4 rows after expand, got %d", len(m.flat))
	}

	m, _, _ = m.Update(key("left")) // collapse shop
	if len(m.flat) != 2 {
		t.Fatalf("expected 2 rows after collapse, got %d", len(m.flat))
	}
}

func TestLeftOnChildMovesToParent(t *testing.T) {
	m := focused(sampleDatabases())

	m, _, _ = m.Update(key("down")) // first table
	if m.cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", m.cursor)
	}

	m, _, _ = m.Update(key("left"))
	if m.cursor != 0 {
		t.Fatalf("expected cursor back at database row, got %d", m.cursor)
	}
}

func TestEnterOnTableEmitsTableSelected(t *testing.T) {
	m := focused(sampleDatabases())

	m, _, _ = m.Update(key("down")) // orders
	_, cmd, consumed := m.Update(key("enter"))
	if !consumed {
		t.Fatal("expected enter consumed")
	}
	if cmd == nil {
		t.Fatal("expected a command from enter on a table")
	}

	message := cmd()
	selected, ok := message.(msg.TableSelectedMsg)
	if !ok {
		t.Fatalf("expected TableSelectedMsg, got %T", message)
	}
	if selected.Table.Name != "orders" {
		t.Fatalf("expected table 'orders', got %q", selected.Table.Name)
	}
	if selected.Database.Name != "shop" {
		t.Fatalf("expected database 'shop', got %q", selected.Database.Name)
	}
}

func TestFilterShowsMatchingTables(t *testing.T) {
	m := focused(sampleDatabases())

	m, _, _ = m.Update(key("/"))
	for _, r := range "ord" {
		m, _, _ = m.Update(key(string(r)))
	}

	if !m.Filtering() {
		t.Fatal("expected filtering active")
	}
	// Database row + the single matching table.
	if len(m.flat) != 2 {
		t.Fatalf("expected 2 rows in filtered tree, got %d", len(m.flat))
	}
	if m.flat[1].Label != "orders" {
		t.Fatalf("expected 'orders' in filtered tree, got %q", m.flat[1].Label)
	}
}

func TestFilterPreservesFullTree(t *testing.T) {
	m := focused(sampleDatabases())

	m, _, _ = m.Update(key("/"))
	for _, r := range "ord" {
		m, _, _ = m.Update(key(string(r)))
	}
	for i := 0; i < 3; i++ {
		m, _, _ = m.Update(key("backspace"))
	}

	if m.Filtering() {
		t.Fatal("expected filter cleared")
	}
	if len(m.flat) != 3 {
		t.Fatalf("expected full tree restored, got %d rows", len(m.flat))
	}
}

func TestFilterFocusToggle(t *testing.T) {
	m := focused(sampleDatabases())

	m, _, _ = m.Update(key("/"))
	if m.treeFocus {
		t.Fatal("expected filter focused after /")
	}

	m, _, _ = m.Update(key("esc"))
	if !m.treeFocus {
		t.Fatal("expected tree focused after esc")
	}
}

func TestResetClearsSelection(t *testing.T) {
	m := focused(sampleDatabases())
	m, _, _ = m.Update(key("down"))

	m.Reset()
	if len(m.flat) != 0 {
		t.Fatalf("expected empty tree, got %d rows", len(m.flat))
	}
	if m.cursor != 0 {
		t.Fatalf("expected cursor reset, got %d", m.cursor)
	}
	if m.Filtering() {
		t.Fatal("expected filter cleared on reset")
	}
}

func TestSetDatabasesResetsSelection(t *testing.T) {
	m := focused(sampleDatabases())
	m, _, _ = m.Update(key("down"))

	m.SetDatabases(twoDatabases())
	if m.cursor != 0 {
		t.Fatalf("expected selection reset after repopulation, got %d", m.cursor)
	}
}

func TestRowRetainedWhenFilterMatchesCellText(t *testing.T) {
	// A filter equal to a substring of the rendered label keeps the row.
	m := focused(sampleDatabases())
	m, _, _ = m.Update(key("/"))
	for _, r := range "users" {
		m, _, _ = m.Update(key(string(r)))
	}
	found := false
	for _, n := range m.flat {
		if n.Label == "users" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected 'users' retained under its own name as filter")
	}
}
