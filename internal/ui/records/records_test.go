package records

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/msg"
	"github.com/andyslucky/gobang/internal/schema"
)

// fakePool serves a fixed number of rows through GetRecords and records the
// calls it sees.
type fakePool struct {
	adapter.Pool

	totalRows int
	fail      bool

	calls   int
	offsets []int
	filters []string
}

func (f *fakePool) GetRecords(ctx context.Context, db *schema.Database, table *schema.Table, offset int, filter string) ([]string, [][]string, error) {
	f.calls++
	f.offsets = append(f.offsets, offset)
	f.filters = append(f.filters, filter)

	if f.fail {
		return nil, nil, errors.New("records failed")
	}

	var rows [][]string
	for i := offset; i < f.totalRows && len(rows) < adapter.RecordsLimitPerPage; i++ {
		rows = append(rows, []string{fmt.Sprintf("%d", i)})
	}
	return []string{"id"}, rows, nil
}

func (f *fakePool) GetKeywords() []string { return adapter.DefaultKeywords }

func (f *fakePool) GetDatabases(ctx context.Context) ([]schema.Database, error) {
	return nil, nil
}

func (f *fakePool) GetColumns(ctx context.Context, db *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	return nil, nil
}

func (f *fakePool) Close() {}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func newRecords(pool *fakePool) (Model, *adapter.SharedPool) {
	shared := adapter.NewSharedPool()
	shared.Swap(pool)
	m := New(shared)
	m.SetSize(80, 30)
	m.Focus()
	return m, shared
}

// run executes a command and feeds the resulting message back into the
// model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	switch message := cmd().(type) {
	case msg.RecordsLoadedMsg:
		m.HandleRecordsLoaded(message)
	case msg.RecordPageMsg:
		m.HandleRecordPage(message)
	default:
		t.Fatalf("unexpected message %T", message)
	}
}

func TestFirstPageOnTableSelected(t *testing.T) {
	pool := &fakePool{totalRows: 450}
	m, _ := newRecords(pool)

	cmd := m.OnTableSelected(schema.Database{Name: "shop"}, schema.Table{Name: "orders"})
	run(t, &m, cmd)

	if m.RowCount() != adapter.RecordsLimitPerPage {
		t.Fatalf("expected %d rows, got %d", adapter.RecordsLimitPerPage, m.RowCount())
	}
	if m.EndOfData() {
		t.Fatal("expected more data available")
	}
	if pool.offsets[0] != 0 {
		t.Fatalf("expected first fetch at offset 0, got %d", pool.offsets[0])
	}
}

func TestPaginationUntilEndOfData(t *testing.T) {
	// Exactly 200*k rows: k+1 fetches are issued before end-of-data; the
	// last returns no rows.
	const k = 2
	pool := &fakePool{totalRows: adapter.RecordsLimitPerPage * k}
	m, _ := newRecords(pool)

	cmd := m.OnTableSelected(schema.Database{Name: "shop"}, schema.Table{Name: "orders"})
	run(t, &m, cmd)

	for !m.EndOfData() {
		m.Grid().SetCursorRow(m.RowCount() - 1)
		var fetch tea.Cmd
		m, fetch, _ = m.Update(key("down"))
		if fetch == nil {
			t.Fatalf("expected a fetch at the loaded end, rows=%d", m.RowCount())
		}
		run(t, &m, fetch)
	}

	if pool.calls != k+1 {
		t.Fatalf("expected %d fetches, got %d", k+1, pool.calls)
	}
	if m.RowCount() != adapter.RecordsLimitPerPage*k {
		t.Fatalf("expected %d rows, got %d", adapter.RecordsLimitPerPage*k, m.RowCount())
	}
	if pool.offsets[k] != adapter.RecordsLimitPerPage*k {
		t.Fatalf("expected final fetch at offset %d, got %d", adapter.RecordsLimitPerPage*k, pool.offsets[k])
	}

	// No further fetches once end-of-data is set.
	m.Grid().SetCursorRow(m.RowCount() - 1)
	var fetch tea.Cmd
	m, fetch, _ = m.Update(key("down"))
	if fetch != nil {
		t.Fatal("expected no fetch after end-of-data")
	}
}

func TestShortPageSetsEndOfData(t *testing.T) {
	pool := &fakePool{totalRows: 42}
	m, _ := newRecords(pool)

	cmd := m.OnTableSelected(schema.Database{Name: "shop"}, schema.Table{Name: "orders"})
	run(t, &m, cmd)

	if !m.EndOfData() {
		t.Fatal("expected end-of-data after a short first page")
	}
	if m.RowCount() != 42 {
		t.Fatalf("expected 42 rows, got %d", m.RowCount())
	}
}

func TestFilterSubmittedVerbatim(t *testing.T) {
	pool := &fakePool{totalRows: 10}
	m, _ := newRecords(pool)

	cmd := m.OnTableSelected(schema.Database{Name: "shop"}, schema.Table{Name: "orders"})
	run(t, &m, cmd)

	// Focus the filter, type a predicate, submit.
	m, _, _ = m.Update(key("/"))
	for _, r := range "id = 1" {
		m, _, _ = m.Update(key(string(r)))
	}
	var fetch tea.Cmd
	m, fetch, _ = m.Update(key("enter"))
	run(t, &m, fetch)

	last := pool.filters[len(pool.filters)-1]
	if last != "id = 1" {
		t.Fatalf("expected filter passed verbatim, got %q", last)
	}
	lastOffset := pool.offsets[len(pool.offsets)-1]
	if lastOffset != 0 {
		t.Fatalf("expected re-read from offset 0, got %d", lastOffset)
	}
	if m.RowCount() > adapter.RecordsLimitPerPage {
		t.Fatalf("expected at most one page, got %d rows", m.RowCount())
	}
}

func TestFailedFirstLoadResetsView(t *testing.T) {
	pool := &fakePool{totalRows: 100}
	m, _ := newRecords(pool)

	cmd := m.OnTableSelected(schema.Database{Name: "shop"}, schema.Table{Name: "orders"})
	run(t, &m, cmd)
	if m.RowCount() != 100 {
		t.Fatalf("expected 100 rows, got %d", m.RowCount())
	}

	pool.fail = true
	cmd = m.OnTableSelected(schema.Database{Name: "shop"}, schema.Table{Name: "users"})
	run(t, &m, cmd)
	if m.RowCount() != 0 {
		t.Fatalf("expected view reset on failed load, got %d rows", m.RowCount())
	}
}

func TestFailedPageKeepsState(t *testing.T) {
	pool := &fakePool{totalRows: 400}
	m, _ := newRecords(pool)

	cmd := m.OnTableSelected(schema.Database{Name: "shop"}, schema.Table{Name: "orders"})
	run(t, &m, cmd)

	pool.fail = true
	m.Grid().SetCursorRow(m.RowCount() - 1)
	var fetch tea.Cmd
	m, fetch, _ = m.Update(key("down"))
	run(t, &m, fetch)

	if m.RowCount() != adapter.RecordsLimitPerPage {
		t.Fatalf("expected previous rows kept on failed paginate, got %d", m.RowCount())
	}
	if m.EndOfData() {
		t.Fatal("expected end-of-data unset after a failed paginate")
	}
}

func TestStaleResultIgnored(t *testing.T) {
	pool := &fakePool{totalRows: 100}
	m, _ := newRecords(pool)

	first := m.OnTableSelected(schema.Database{Name: "shop"}, schema.Table{Name: "orders"})
	staleMsg := first().(msg.RecordsLoadedMsg)

	// A newer selection supersedes the in-flight result.
	second := m.OnTableSelected(schema.Database{Name: "shop"}, schema.Table{Name: "users"})
	m.HandleRecordsLoaded(staleMsg)
	if m.RowCount() != 0 {
		t.Fatalf("expected stale result dropped, got %d rows", m.RowCount())
	}

	run(t, &m, second)
	if m.RowCount() != 100 {
		t.Fatalf("expected fresh result applied, got %d rows", m.RowCount())
	}
}
