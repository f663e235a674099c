// Package dbtree implements the sidebar: a filter input over an expandable
// outline of databases, schemas and tables.
package dbtree

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/andyslucky/gobang/internal/msg"
	"github.com/andyslucky/gobang/internal/schema"
	"github.com/andyslucky/gobang/internal/theme"
	"github.com/andyslucky/gobang/internal/ui/dialog"
	"github.com/andyslucky/gobang/internal/ui/input"
)

// NodeKind classifies a tree node.
type NodeKind int

const (
	NodeDatabase NodeKind = iota
	NodeSchema
	NodeTable
)

// TreeNode is one row of the outline.
type TreeNode struct {
	Label    string
	Kind     NodeKind
	Children []*TreeNode
	Parent   *TreeNode
	Expanded bool
	Depth    int

	Database schema.Database
	Table    *schema.Table
}

// Model is the sidebar component.
type Model struct {
	filter input.Model

	databases []schema.Database
	nodes     []*TreeNode // full tree
	filtered  []*TreeNode // filter view, distinct from the full tree
	flat      []*TreeNode // flattened visible rows of the active tree

	cursor  int
	offset  int
	width   int
	height  int
	focused bool

	// treeFocus is false while the filter input receives keys.
	treeFocus bool
	loading   bool
}

// New creates an empty sidebar.
func New() Model {
	return Model{
		filter:    input.New("Filter: ", "table name"),
		treeFocus: true,
	}
}

// SetDatabases populates the tree. The selection and filter reset.
func (m *Model) SetDatabases(dbs []schema.Database) {
	m.databases = dbs
	m.loading = false
	m.filter.Reset()
	m.nodes = buildTree(dbs)
	m.filtered = nil
	m.cursor = 0
	m.offset = 0
	m.flatten()
}

// Reset returns the sidebar to its initial state.
func (m *Model) Reset() {
	m.SetDatabases(nil)
}

// SetLoading marks the sidebar as waiting for the database list.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// Update handles keys. The returned bool reports consumption.
func (m Model) Update(keyMsg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if !m.focused {
		return m, nil, false
	}

	if !m.treeFocus {
		return m.updateFilter(keyMsg)
	}

	switch keyMsg.String() {
	case "/":
		m.treeFocus = false
		m.filter.Focus()
		return m, nil, true

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}
		return m, nil, true

	case "down", "j":
		if m.cursor < len(m.flat)-1 {
			m.cursor++
			m.ensureVisible()
		}
		return m, nil, true

	case "pgup":
		m.cursor -= m.contentHeight()
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.ensureVisible()
		return m, nil, true

	case "pgdown":
		m.cursor += m.contentHeight()
		if m.cursor > len(m.flat)-1 {
			m.cursor = len(m.flat) - 1
		}
		m.ensureVisible()
		return m, nil, true

	case "home", "g":
		m.cursor = 0
		m.offset = 0
		return m, nil, true

	case "end", "G":
		m.cursor = len(m.flat) - 1
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.ensureVisible()
		return m, nil, true

	case "right", "l":
		if node := m.current(); node != nil {
			if len(node.Children) > 0 {
				if node.Expanded {
					// Move to first child.
					m.cursor++
					m.ensureVisible()
				} else {
					node.Expanded = true
					m.flatten()
				}
			}
		}
		return m, nil, true

	case "left", "h":
		if node := m.current(); node != nil {
			if node.Expanded && len(node.Children) > 0 {
				node.Expanded = false
				m.flatten()
			} else if node.Parent != nil {
				// Move to parent.
				for i, n := range m.flat {
					if n == node.Parent {
						m.cursor = i
						break
					}
				}
				m.ensureVisible()
			}
		}
		return m, nil, true

	case "enter":
		node := m.current()
		if node == nil {
			return m, nil, true
		}
		if node.Kind == NodeTable && node.Table != nil {
			database := node.Database
			table := *node.Table
			return m, func() tea.Msg {
				return msg.TableSelectedMsg{Database: database, Table: table}
			}, true
		}
		if len(node.Children) > 0 {
			node.Expanded = !node.Expanded
			m.flatten()
		}
		return m, nil, true
	}

	return m, nil, false
}

func (m Model) updateFilter(keyMsg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch keyMsg.String() {
	case "enter", "esc", "down":
		m.treeFocus = true
		m.filter.Blur()
		return m, nil, true
	}

	before := m.filter.Value()
	var consumed bool
	m.filter, consumed = m.filter.Update(keyMsg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, nil, consumed
}

// applyFilter rebuilds the filtered tree from the full one. The filtered
// tree is a distinct value so clearing the filter restores the previous
// expansion state.
func (m *Model) applyFilter() {
	needle := m.filter.Value()
	if needle == "" {
		m.filtered = nil
	} else {
		m.filtered = filterTree(m.nodes, strings.ToLower(needle))
	}
	m.cursor = 0
	m.offset = 0
	m.flatten()
}

// current returns the node under the cursor.
func (m Model) current() *TreeNode {
	if m.cursor < 0 || m.cursor >= len(m.flat) {
		return nil
	}
	return m.flat[m.cursor]
}

// SelectedTable returns the table under the cursor, if any.
func (m Model) SelectedTable() *schema.Table {
	if node := m.current(); node != nil && node.Kind == NodeTable {
		return node.Table
	}
	return nil
}

// VisibleRows returns (selected row index, visible row count), the values
// driving the scrollbar.
func (m Model) VisibleRows() (int, int) {
	return m.cursor, len(m.flat)
}

// Filtering reports whether a non-empty filter is active.
func (m Model) Filtering() bool {
	return m.filter.Value() != ""
}

// FilterValue returns the filter text.
func (m Model) FilterValue() string {
	return m.filter.Value()
}

func (m *Model) flatten() {
	m.flat = nil
	for _, node := range m.activeNodes() {
		m.flattenNode(node)
	}
	if m.cursor >= len(m.flat) {
		m.cursor = len(m.flat) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) activeNodes() []*TreeNode {
	if m.filter.Value() != "" {
		return m.filtered
	}
	return m.nodes
}

func (m *Model) flattenNode(node *TreeNode) {
	m.flat = append(m.flat, node)
	if node.Expanded {
		for _, child := range node.Children {
			m.flattenNode(child)
		}
	}
}

func (m *Model) ensureVisible() {
	h := m.contentHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) contentHeight() int {
	h := m.height - 3 // border + filter line
	if h < 1 {
		h = 1
	}
	return h
}

// Commands lists the sidebar's help entries.
func (m Model) Commands() []dialog.Command {
	return []dialog.Command{
		{Key: "↑/↓", Name: "move selection"},
		{Key: "←/→", Name: "collapse / expand"},
		{Key: "enter", Name: "open table"},
		{Key: "/", Name: "filter tables"},
	}
}

// Focus gives the sidebar keyboard focus; the tree receives keys first.
func (m *Model) Focus() {
	m.focused = true
	if !m.treeFocus {
		m.filter.Focus()
	}
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.filter.Blur()
}

// Focused reports whether the sidebar has focus.
func (m Model) Focused() bool { return m.focused }

// SetSize sets the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.filter.SetWidth(w - 2)
}

// View renders the filter line and the visible tree rows.
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

	lines := []string{m.filter.View()}

	switch {
	case m.loading:
		lines = append(lines, "", th.MutedText.Render(" loading databases..."))
	case len(m.flat) == 0:
		lines = append(lines, "", th.MutedText.Render(" no databases"))
	default:
		end := m.offset + m.contentHeight()
		if end > len(m.flat) {
			end = len(m.flat)
		}
		for i := m.offset; i < end; i++ {
			lines = append(lines, m.renderNode(m.flat[i], i == m.cursor, th, innerW))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return border.Width(innerW).Height(innerH).Render(content)
}

func (m Model) renderNode(node *TreeNode, selected bool, th *theme.Theme, width int) string {
	indent := strings.Repeat("  ", node.Depth)

	expandIcon := "  "
	if len(node.Children) > 0 {
		if node.Expanded {
			expandIcon = "▾ "
		} else {
			expandIcon = "▸ "
		}
	}

	line := indent + expandIcon + node.Label
	line = runewidth.Truncate(line, width, "…")
	pad := width - runewidth.StringWidth(line)
	if pad > 0 {
		line += strings.Repeat(" ", pad)
	}

	if selected {
		return th.TreeSelected.Render(line)
	}

	// Highlight the matched substring while a filter is active.
	if needle := m.filter.Value(); needle != "" && node.Kind == NodeTable {
		if idx := strings.Index(strings.ToLower(line), strings.ToLower(needle)); idx >= 0 {
			return th.TreeTable.Render(line[:idx]) +
				th.TreeMatch.Render(line[idx:idx+len(needle)]) +
				th.TreeTable.Render(line[idx+len(needle):])
		}
	}

	switch node.Kind {
	case NodeDatabase:
		return th.TreeDatabase.Render(line)
	case NodeSchema:
		return th.TreeSchema.Render(line)
	default:
		return th.TreeTable.Render(line)
	}
}

// buildTree converts the database list into tree nodes. A single database
// starts expanded.
func buildTree(databases []schema.Database) []*TreeNode {
	var nodes []*TreeNode
	for _, db := range databases {
		dbNode := &TreeNode{
			Label:    db.Name,
			Kind:     NodeDatabase,
			Database: db,
			Expanded: len(databases) == 1,
		}

		for _, child := range db.Children {
			switch {
			case child.Table != nil:
				t := child.Table
				dbNode.Children = append(dbNode.Children, &TreeNode{
					Label:    t.Name,
					Kind:     NodeTable,
					Depth:    1,
					Parent:   dbNode,
					Database: db,
					Table:    t,
				})
			case child.Schema != nil:
				s := child.Schema
				schemaNode := &TreeNode{
					Label:    s.Name,
					Kind:     NodeSchema,
					Depth:    1,
					Parent:   dbNode,
					Database: db,
					Expanded: s.Name == "public",
				}
				for i := range s.Tables {
					t := &s.Tables[i]
					schemaNode.Children = append(schemaNode.Children, &TreeNode{
						Label:    t.Name,
						Kind:     NodeTable,
						Depth:    2,
						Parent:   schemaNode,
						Database: db,
						Table:    t,
					})
				}
				dbNode.Children = append(dbNode.Children, schemaNode)
			}
		}

		nodes = append(nodes, dbNode)
	}
	return nodes
}

// filterTree keeps only tables whose name contains the needle, with their
// ancestors, everything expanded.
func filterTree(nodes []*TreeNode, needle string) []*TreeNode {
	var out []*TreeNode
	for _, node := range nodes {
		if filtered := filterNode(node, needle, nil); filtered != nil {
			out = append(out, filtered)
		}
	}
	return out
}

func filterNode(node *TreeNode, needle string, parent *TreeNode) *TreeNode {
	if node.Kind == NodeTable {
		if strings.Contains(strings.ToLower(node.Label), needle) {
			clone := *node
			clone.Parent = parent
			clone.Children = nil
			return &clone
		}
		return nil
	}

	clone := *node
	clone.Parent = parent
	clone.Children = nil
	clone.Expanded = true
	for _, child := range node.Children {
		if filtered := filterNode(child, needle, &clone); filtered != nil {
			clone.Children = append(clone.Children, filtered)
		}
	}
	if len(clone.Children) == 0 {
		return nil
	}
	return &clone
}
