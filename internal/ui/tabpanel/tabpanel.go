// Package tabpanel implements the right-hand panel: a toolbar listing the
// open tabs and a content region rendering the selected tab's body. The
// Records and Properties tabs are fixed; SQL editor tabs come and go.
package tabpanel

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/config"
	"github.com/andyslucky/gobang/internal/msg"
	"github.com/andyslucky/gobang/internal/schema"
	"github.com/andyslucky/gobang/internal/theme"
	"github.com/andyslucky/gobang/internal/ui/dialog"
	"github.com/andyslucky/gobang/internal/ui/input"
	"github.com/andyslucky/gobang/internal/ui/properties"
	"github.com/andyslucky/gobang/internal/ui/records"
	"github.com/andyslucky/gobang/internal/ui/sqltab"
)

// fixedTabs is the number of non-closable tabs at the front: Records and
// Properties.
const fixedTabs = 2

type focusArea int

const (
	focusToolbar focusArea = iota
	focusContent
)

// Model is the tab panel component.
type Model struct {
	shared *adapter.SharedPool
	keys   config.KeyConfig

	records    records.Model
	properties properties.Model
	editors    []*sqltab.Model

	editorNames  []string
	selected     int
	nextEditorID int

	renaming    bool
	renameInput input.Model

	focus   focusArea
	width   int
	height  int
	focused bool
}

// New creates the panel with the two fixed tabs.
func New(shared *adapter.SharedPool, keys config.KeyConfig) Model {
	return Model{
		shared:     shared,
		keys:       keys,
		records:    records.New(shared),
		properties: properties.New(shared),
		focus:      focusToolbar,
	}
}

// Count returns the number of tabs.
func (m Model) Count() int {
	return fixedTabs + len(m.editors)
}

// Selected returns the selected tab index.
func (m Model) Selected() int {
	return m.selected
}

// TabNames returns the toolbar labels in order.
func (m Model) TabNames() []string {
	names := []string{"Records", "Properties"}
	return append(names, m.editorNames...)
}

// Records exposes the records tab for message routing and tests.
func (m *Model) Records() *records.Model { return &m.records }

// Properties exposes the properties tab for message routing and tests.
func (m *Model) Properties() *properties.Model { return &m.properties }

// Editors exposes the open editor tabs.
func (m *Model) Editors() []*sqltab.Model { return m.editors }

// ContentFocused reports whether the content region has focus inside the
// panel.
func (m Model) ContentFocused() bool {
	return m.focus == focusContent
}

// Update handles keys. The returned bool reports consumption.
func (m Model) Update(keyMsg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if !m.focused {
		return m, nil, false
	}

	if m.renaming {
		return m.updateRename(keyMsg)
	}

	if m.focus == focusToolbar {
		if model, cmd, consumed := m.updateToolbar(keyMsg); consumed {
			return model, cmd, true
		}
	} else {
		var cmd tea.Cmd
		var consumed bool
		switch {
		case m.selected == 0:
			m.records, cmd, consumed = m.records.Update(keyMsg)
		case m.selected == 1:
			m.properties, cmd, consumed = m.properties.Update(keyMsg)
		default:
			if ed := m.activeEditor(); ed != nil {
				var next sqltab.Model
				next, cmd, consumed = ed.Update(keyMsg)
				*ed = next
			}
		}
		if consumed {
			return m, cmd, true
		}
	}

	// Unconsumed keys may move focus between toolbar and content.
	switch keyMsg.String() {
	case m.keys.FocusDown:
		if m.focus == focusToolbar {
			m.setFocusArea(focusContent)
			return m, nil, true
		}
	case m.keys.FocusUp, "esc":
		if m.focus == focusContent {
			m.setFocusArea(focusToolbar)
			return m, nil, true
		}
	}
	return m, nil, false
}

func (m Model) updateToolbar(keyMsg tea.KeyMsg) (Model, tea.Cmd, bool) {
	key := keyMsg.String()

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		idx, _ := strconv.Atoi(key)
		if idx-1 < m.Count() {
			m.selectTab(idx - 1)
		}
		return m, nil, true
	}

	switch key {
	case "left":
		if m.selected > 0 {
			m.selectTab(m.selected - 1)
		}
		return m, nil, true
	case "right":
		if m.selected < m.Count()-1 {
			m.selectTab(m.selected + 1)
		}
		return m, nil, true
	case "home":
		m.selectTab(0)
		return m, nil, true
	case "end":
		m.selectTab(m.Count() - 1)
		return m, nil, true
	case "a":
		return m, func() tea.Msg { return msg.TabNewMsg{} }, true
	case "x", "delete":
		return m, func() tea.Msg { return msg.TabCloseCurrentMsg{} }, true
	case "r":
		if m.selected >= fixedTabs {
			m.renaming = true
			m.renameInput = input.New("", "tab name")
			m.renameInput.SetValue(m.editorNames[m.selected-fixedTabs])
			m.renameInput.Focus()
		}
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) updateRename(keyMsg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch keyMsg.String() {
	case "enter":
		name := m.renameInput.Value()
		index := m.selected
		m.renaming = false
		if name == "" {
			return m, nil, true
		}
		return m, func() tea.Msg {
			return msg.TabRenameMsg{Index: index, Name: name}
		}, true
	case "esc":
		m.renaming = false
		return m, nil, true
	}

	var consumed bool
	m.renameInput, consumed = m.renameInput.Update(keyMsg)
	return m, nil, consumed
}

// HandleTabNew opens a new SQL editor tab and selects it.
func (m *Model) HandleTabNew() {
	m.nextEditorID++
	ed := sqltab.New(m.nextEditorID, m.shared, m.keys.Execute)
	m.editors = append(m.editors, &ed)
	m.editorNames = append(m.editorNames, fmt.Sprintf("Editor %d", m.nextEditorID))
	m.selectTab(m.Count() - 1)
	m.setFocusArea(focusContent)
}

// HandleTabCloseCurrent closes the selected editor tab. The fixed Records
// and Properties tabs are never removed. The selection shifts so it stays
// within [0, count-1].
func (m *Model) HandleTabCloseCurrent() {
	if m.selected < fixedTabs {
		return
	}
	idx := m.selected - fixedTabs
	closed := m.editors[idx]
	closed.Blur()
	m.editors = append(m.editors[:idx], m.editors[idx+1:]...)
	m.editorNames = append(m.editorNames[:idx], m.editorNames[idx+1:]...)

	if m.selected > m.Count()-1 {
		m.selected = m.Count() - 1
	}
	m.applyContentFocus()
}

// HandleTabRename applies a rename to an editor tab.
func (m *Model) HandleTabRename(rename msg.TabRenameMsg) {
	idx := rename.Index - fixedTabs
	if idx < 0 || idx >= len(m.editorNames) || rename.Name == "" {
		return
	}
	m.editorNames[idx] = rename.Name
}

// OnTableSelected switches to the Records tab, surrenders focus to content
// and starts the fetches for records and properties. Editor completion
// scopes are repointed as well.
func (m *Model) OnTableSelected(database schema.Database, table schema.Table) tea.Cmd {
	recCmd := m.records.OnTableSelected(database, table)
	propCmd := m.properties.OnTableSelected(database, table)
	for _, ed := range m.editors {
		ed.OnTableSelected(database, table)
	}

	m.selectTab(0)
	m.setFocusArea(focusContent)
	return tea.Batch(recCmd, propCmd)
}

// HandleExecuteQuery starts execution on the editor that owns the query.
func (m *Model) HandleExecuteQuery(exec msg.ExecuteQueryMsg) tea.Cmd {
	for _, ed := range m.editors {
		if ed.ID() == exec.TabID {
			return ed.ExecuteCmd(exec.Query)
		}
	}
	return nil
}

// HandleQueryResult routes an execution outcome to its editor.
func (m *Model) HandleQueryResult(result msg.QueryResultMsg) {
	for _, ed := range m.editors {
		if ed.ID() == result.TabID {
			ed.HandleQueryResult(result)
		}
	}
}

// CopySelected copies the selected cell of the active content.
func (m Model) CopySelected() {
	switch {
	case m.selected == 0:
		m.records.CopySelected()
	case m.selected == 1:
		m.properties.CopySelected()
	default:
		if ed := m.activeEditor(); ed != nil {
			ed.CopySelected()
		}
	}
}

func (m *Model) activeEditor() *sqltab.Model {
	idx := m.selected - fixedTabs
	if idx < 0 || idx >= len(m.editors) {
		return nil
	}
	return m.editors[idx]
}

func (m *Model) selectTab(idx int) {
	if idx < 0 || idx >= m.Count() {
		return
	}
	m.blurContent()
	m.selected = idx
	m.applyContentFocus()
}

func (m *Model) setFocusArea(area focusArea) {
	m.focus = area
	m.applyContentFocus()
}

func (m *Model) blurContent() {
	m.records.Blur()
	m.properties.Blur()
	for _, ed := range m.editors {
		ed.Blur()
	}
}

func (m *Model) applyContentFocus() {
	m.blurContent()
	if !m.focused || m.focus != focusContent {
		return
	}
	switch {
	case m.selected == 0:
		m.records.Focus()
	case m.selected == 1:
		m.properties.Focus()
	default:
		if ed := m.activeEditor(); ed != nil {
			ed.Focus()
		}
	}
}

// Commands lists the panel's help entries.
func (m Model) Commands(keys config.KeyConfig) []dialog.Command {
	return []dialog.Command{
		{Key: "1-9", Name: "select tab"},
		{Key: "a", Name: "new editor tab"},
		{Key: "x", Name: "close tab"},
		{Key: "r", Name: "rename tab"},
		{Key: keys.Execute, Name: "run query"},
		{Key: keys.Copy, Name: "copy cell"},
		{Key: "/", Name: "edit filter"},
	}
}

// Reset returns the panel to its initial state: fixed tabs only, Records
// selected.
func (m *Model) Reset() {
	m.records.Reset()
	m.properties.Reset()
	m.editors = nil
	m.editorNames = nil
	m.selected = 0
	m.renaming = false
	m.focus = focusToolbar
	m.applyContentFocus()
}

// Focus gives the panel keyboard focus.
func (m *Model) Focus() {
	m.focused = true
	m.applyContentFocus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.blurContent()
}

// Focused reports whether the panel has focus.
func (m Model) Focused() bool { return m.focused }

// SetSize sets the panel dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h

	contentH := h - 1
	if contentH < 3 {
		contentH = 3
	}
	m.records.SetSize(w, contentH)
	m.properties.SetSize(w, contentH)
	for _, ed := range m.editors {
		ed.SetSize(w, contentH)
	}
	m.renameInput.SetWidth(20)
}

// View renders the toolbar and the selected tab's body.
func (m Model) View() string {
	th := theme.Current

	var labels []string
	for i, name := range m.TabNames() {
		label := fmt.Sprintf("%s [%d]", name, i+1)
		if m.renaming && i == m.selected {
			label = m.renameInput.View()
		}
		if i == m.selected {
			labels = append(labels, th.TabActive.Render(label))
		} else {
			labels = append(labels, th.TabInactive.Render(label))
		}
	}
	labels = append(labels, th.MutedText.Render(" (Press 'a' for new editor)"))
	bar := th.TabBar.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, labels...))

	var content string
	switch {
	case m.selected == 0:
		content = m.records.View()
	case m.selected == 1:
		content = m.properties.View()
	default:
		if ed := m.activeEditor(); ed != nil {
			content = ed.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, bar, content)
}
