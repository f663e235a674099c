// Package properties implements the table metadata view: Columns,
// Constraints, Foreign Keys and Indexes sub-tabs over read-only grids. The
// four collections are fetched concurrently when a table is selected.
package properties

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/msg"
	"github.com/andyslucky/gobang/internal/schema"
	"github.com/andyslucky/gobang/internal/theme"
	"github.com/andyslucky/gobang/internal/ui/grid"
)

const fetchTimeout = 5 * time.Second

// SubTab identifies one metadata collection.
type SubTab int

const (
	SubColumns SubTab = iota
	SubConstraints
	SubForeignKeys
	SubIndexes
)

var subTabNames = []string{"Columns", "Constraints", "Foreign Keys", "Indexes"}

// Model is the properties component.
type Model struct {
	shared *adapter.SharedPool

	grids    [4]grid.Model
	selected SubTab
	gen      uint64

	width   int
	height  int
	focused bool
}

// New creates an empty properties view.
func New(shared *adapter.SharedPool) Model {
	return Model{shared: shared}
}

// Name returns the toolbar label.
func (m Model) Name() string { return "Properties" }

// OnTableSelected resets the grids and returns the command fetching all
// four collections concurrently.
func (m *Model) OnTableSelected(database schema.Database, table schema.Table) tea.Cmd {
	for i := range m.grids {
		m.grids[i].Reset()
	}
	m.gen++

	pool := m.shared.Get()
	db := database
	t := table
	gen := m.gen

	return func() tea.Msg {
		if pool == nil {
			return msg.PropertiesLoadedMsg{Err: adapter.ErrNotConnected, Gen: gen}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		var columns, constraints, fks, indexes []schema.TableRow
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			columns, err = pool.GetColumns(ctx, &db, &t)
			return err
		})
		g.Go(func() (err error) {
			constraints, err = pool.GetConstraints(ctx, &db, &t)
			return err
		})
		g.Go(func() (err error) {
			fks, err = pool.GetForeignKeys(ctx, &db, &t)
			return err
		})
		g.Go(func() (err error) {
			indexes, err = pool.GetIndexes(ctx, &db, &t)
			return err
		})
		if err := g.Wait(); err != nil {
			return msg.PropertiesLoadedMsg{Err: err, Gen: gen}
		}

		return msg.PropertiesLoadedMsg{
			Columns:     columns,
			Constraints: constraints,
			ForeignKeys: fks,
			Indexes:     indexes,
			Gen:         gen,
		}
	}
}

// HandlePropertiesLoaded populates the four grids.
func (m *Model) HandlePropertiesLoaded(loaded msg.PropertiesLoadedMsg) {
	if loaded.Gen != m.gen {
		return
	}
	if loaded.Err != nil {
		for i := range m.grids {
			m.grids[i].Reset()
		}
		return
	}

	m.setGrid(SubColumns, loaded.Columns)
	m.setGrid(SubConstraints, loaded.Constraints)
	m.setGrid(SubForeignKeys, loaded.ForeignKeys)
	m.setGrid(SubIndexes, loaded.Indexes)
	if m.focused {
		m.grids[m.selected].Focus()
	}
}

func (m *Model) setGrid(tab SubTab, tableRows []schema.TableRow) {
	if len(tableRows) == 0 {
		m.grids[tab].Reset()
		return
	}
	headers := tableRows[0].Fields()
	rows := make([][]string, len(tableRows))
	for i, r := range tableRows {
		rows[i] = r.Cells()
	}
	m.grids[tab].SetData(headers, rows)
}

// Update handles keys. The returned bool reports consumption.
func (m Model) Update(keyMsg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if !m.focused {
		return m, nil, false
	}

	switch keyMsg.String() {
	case "tab", "]":
		m.switchTo((m.selected + 1) % SubTab(len(subTabNames)))
		return m, nil, true
	case "shift+tab", "[":
		m.switchTo((m.selected + SubTab(len(subTabNames)) - 1) % SubTab(len(subTabNames)))
		return m, nil, true
	case "1", "2", "3", "4":
		m.switchTo(SubTab(int(keyMsg.String()[0] - '1')))
		return m, nil, true
	}

	var consumed bool
	m.grids[m.selected], consumed = m.grids[m.selected].Update(keyMsg)
	return m, nil, consumed
}

func (m *Model) switchTo(tab SubTab) {
	m.grids[m.selected].Blur()
	m.selected = tab
	if m.focused {
		m.grids[m.selected].Focus()
	}
}

// Selected returns the active sub-tab.
func (m Model) Selected() SubTab { return m.selected }

// Grid exposes the grid of one sub-tab for tests.
func (m *Model) Grid(tab SubTab) *grid.Model { return &m.grids[tab] }

// CopySelected copies the selected cell of the active grid.
func (m Model) CopySelected() {
	m.grids[m.selected].CopySelected()
}

// Reset returns the component to its initial state.
func (m *Model) Reset() {
	for i := range m.grids {
		m.grids[i].Reset()
	}
	m.selected = SubColumns
}

// Focus gives the component keyboard focus.
func (m *Model) Focus() {
	m.focused = true
	m.grids[m.selected].Focus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	for i := range m.grids {
		m.grids[i].Blur()
	}
}

// Focused reports whether the component has focus.
func (m Model) Focused() bool { return m.focused }

// SetSize sets the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	gridH := h - 1
	if gridH < 3 {
		gridH = 3
	}
	for i := range m.grids {
		m.grids[i].SetSize(w, gridH)
	}
}

// View renders the sub-tab bar and the active grid.
func (m Model) View() string {
	th := theme.Current

	var labels []string
	for i, name := range subTabNames {
		if SubTab(i) == m.selected {
			labels = append(labels, th.TabActive.Render(name))
		} else {
			labels = append(labels, th.TabInactive.Render(name))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Bottom, labels...)

	return lipgloss.JoinVertical(lipgloss.Left, bar, m.grids[m.selected].View())
}
