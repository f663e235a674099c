// Package app wires the components into the root Bubble Tea model: focus
// routing, pool lifecycle, message fan-out and the modal overlays.
package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/completion"
	"github.com/andyslucky/gobang/internal/config"
	"github.com/andyslucky/gobang/internal/logging"
	"github.com/andyslucky/gobang/internal/msg"
	"github.com/andyslucky/gobang/internal/schema"
	"github.com/andyslucky/gobang/internal/ui/connlist"
	"github.com/andyslucky/gobang/internal/ui/dbtree"
	"github.com/andyslucky/gobang/internal/ui/dialog"
	"github.com/andyslucky/gobang/internal/ui/tabpanel"
)

const connectTimeout = 5 * time.Second

// Focus identifies the component receiving keyboard input.
type Focus int

const (
	FocusConnections Focus = iota
	FocusDatabaseList
	FocusTabPanel
)

// Model is the root application model.
type Model struct {
	cfg    *config.Config
	shared *adapter.SharedPool

	connections connlist.Model
	tree        dbtree.Model
	tabPanel    tabpanel.Model
	errPopup    dialog.ErrorModel
	help        dialog.HelpModel

	focus        Focus
	conn         *config.Connection
	gen          uint64
	sidebarWidth int
	width        int
	height       int
	quitting     bool
}

// New creates the root model from the loaded configuration.
func New(cfg *config.Config) Model {
	shared := adapter.NewSharedPool()

	m := Model{
		cfg:          cfg,
		shared:       shared,
		connections:  connlist.New(cfg.Connections),
		tree:         dbtree.New(),
		tabPanel:     tabpanel.New(shared, cfg.Key),
		errPopup:     dialog.NewError(),
		help:         dialog.NewHelp(),
		focus:        FocusConnections,
		sidebarWidth: 30,
	}
	m.connections.Focus()
	return m
}

// Init returns no initial command; the picker is shown until the user
// connects.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles all messages.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(message)

	case msg.ConnectionChangedMsg:
		return m.handleConnectionChanged(message)

	case msg.PoolReadyMsg:
		m.conn = message.Conn
		m.tree.Reset()
		m.tree.SetLoading(true)
		m.tabPanel.Reset()
		m.setFocus(FocusDatabaseList)
		return m, tea.Batch(m.loadDatabases(), m.refreshSources())

	case msg.DatabasesLoadedMsg:
		if message.Gen != m.gen {
			break
		}
		m.tree.SetDatabases(message.Databases)

	case msg.TableSelectedMsg:
		cmd := m.tabPanel.OnTableSelected(message.Database, message.Table)
		m.setFocus(FocusTabPanel)
		return m, tea.Batch(cmd, m.refreshSources())

	case msg.TabNewMsg:
		m.tabPanel.HandleTabNew()
		m.layout()

	case msg.TabCloseCurrentMsg:
		m.tabPanel.HandleTabCloseCurrent()

	case msg.TabRenameMsg:
		m.tabPanel.HandleTabRename(message)

	case msg.ExecuteQueryMsg:
		return m, m.tabPanel.HandleExecuteQuery(message)

	case msg.QueryResultMsg:
		m.tabPanel.HandleQueryResult(message)
		if message.Err != nil {
			m.errPopup.Show(message.Err.Error())
		}

	case msg.RecordsLoadedMsg:
		m.tabPanel.Records().HandleRecordsLoaded(message)
		if message.Err != nil {
			m.errPopup.Show(message.Err.Error())
		}

	case msg.RecordPageMsg:
		m.tabPanel.Records().HandleRecordPage(message)
		if message.Err != nil {
			m.errPopup.Show(message.Err.Error())
		}

	case msg.PropertiesLoadedMsg:
		m.tabPanel.Properties().HandlePropertiesLoaded(message)
		if message.Err != nil {
			m.errPopup.Show(message.Err.Error())
		}

	case msg.ErrMsg:
		m.errPopup.Show(message.Err.Error())
	}

	return m, nil
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.cfg.Key

	// Ctrl-C always terminates the loop.
	if key.String() == "ctrl+c" {
		return m.quit()
	}

	// The error overlay swallows everything except its dismiss key;
	// dismissing returns control to the last focused component unchanged.
	if m.errPopup.Visible() {
		if key.String() == keys.ExitPopup {
			m.errPopup.Hide()
		}
		return m, nil
	}

	if m.help.Visible() {
		switch key.String() {
		case keys.ExitPopup, keys.OpenHelp, "q":
			m.help.Hide()
		}
		return m, nil
	}

	// Focused component first; unconsumed keys fall through to the global
	// bindings.
	var cmd tea.Cmd
	var consumed bool
	switch m.focus {
	case FocusConnections:
		m.connections, cmd, consumed = m.connections.Update(key)
	case FocusDatabaseList:
		m.tree, cmd, consumed = m.tree.Update(key)
	case FocusTabPanel:
		m.tabPanel, cmd, consumed = m.tabPanel.Update(key)
	}
	if consumed {
		return m, cmd
	}

	switch key.String() {
	case keys.Quit:
		return m.quit()

	case keys.OpenHelp:
		m.help.Show(m.commands())
		return m, nil

	case keys.Copy:
		if m.focus == FocusTabPanel {
			m.tabPanel.CopySelected()
		}
		return m, nil

	case "ctrl+o":
		m.setFocus(FocusConnections)
		return m, nil

	case keys.FocusRight:
		if m.focus == FocusDatabaseList {
			m.setFocus(FocusTabPanel)
		}
		return m, nil

	case keys.FocusLeft:
		if m.focus == FocusTabPanel {
			m.setFocus(FocusDatabaseList)
		}
		return m, nil

	case ">":
		if m.sidebarWidth < m.width/2 {
			m.sidebarWidth += 2
			m.layout()
		}
		return m, nil

	case "<":
		if m.sidebarWidth > 16 {
			m.sidebarWidth -= 2
			m.layout()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.shared.Close()
	logging.Sync()
	return m, tea.Quit
}

func (m Model) handleConnectionChanged(changed msg.ConnectionChangedMsg) (tea.Model, tea.Cmd) {
	m.gen++

	conn := changed.Conn
	if conn == nil {
		m.shared.Close()
		m.tree.Reset()
		m.setFocus(FocusConnections)
		return m, nil
	}

	shared := m.shared
	return m, func() tea.Msg {
		a, ok := adapter.Registry[conn.Adapter]
		if !ok {
			return msg.ErrMsg{Err: fmt.Errorf("unknown adapter: %s", conn.Adapter)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := a.Connect(ctx, conn.BuildDSN())
		if err != nil {
			return msg.ErrMsg{Err: fmt.Errorf("connection failed: %w", err)}
		}

		// The previous pool is closed before the new one is published.
		shared.Swap(pool)
		logging.L().Info("pool swapped")
		return msg.PoolReadyMsg{Conn: conn}
	}
}

// loadDatabases fetches the sidebar contents. A pinned database restricts
// the list to that database alone.
func (m *Model) loadDatabases() tea.Cmd {
	pool := m.shared.Get()
	conn := m.conn
	gen := m.gen

	return func() tea.Msg {
		if pool == nil {
			return msg.DatabasesLoadedMsg{Gen: gen}
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		dbs, err := pool.GetDatabases(ctx)
		if err != nil {
			return msg.ErrMsg{Err: err}
		}

		if conn != nil && conn.Database != "" {
			var pinned []schema.Database
			for _, db := range dbs {
				if db.Name == conn.Database {
					if len(db.Children) == 0 {
						children, err := pool.GetTables(ctx, db.Name)
						if err != nil {
							return msg.ErrMsg{Err: err}
						}
						db.Children = children
					}
					pinned = append(pinned, db)
					break
				}
			}
			dbs = pinned
		}

		return msg.DatabasesLoadedMsg{Databases: dbs, Gen: gen}
	}
}

// refreshSources re-reads the pool-backed completion sources. Failures are
// logged and degrade to stale or empty candidates.
func (m *Model) refreshSources() tea.Cmd {
	sources := []*completion.PoolSource{m.tabPanel.Records().Source()}
	for _, ed := range m.tabPanel.Editors() {
		sources = append(sources, ed.Source())
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		for _, s := range sources {
			if err := s.Refresh(ctx); err != nil {
				logging.L().Warn("completion refresh failed", logging.Err(err))
			}
		}
		return nil
	}
}

func (m *Model) setFocus(focus Focus) {
	m.connections.Blur()
	m.tree.Blur()
	m.tabPanel.Blur()

	m.focus = focus

	switch focus {
	case FocusConnections:
		m.connections.Focus()
	case FocusDatabaseList:
		m.tree.Focus()
	case FocusTabPanel:
		m.tabPanel.Focus()
	}
}

func (m *Model) layout() {
	m.connections.SetSize(m.width, m.height)
	m.errPopup.SetSize(m.width, m.height)
	m.help.SetSize(m.width, m.height)
	m.tree.SetSize(m.sidebarWidth, m.height)
	m.tabPanel.SetSize(m.width-m.sidebarWidth, m.height)
}

// commands aggregates the help entries of the visible components.
func (m Model) commands() []dialog.Command {
	keys := m.cfg.Key
	commands := []dialog.Command{
		{Key: keys.Quit, Name: "quit"},
		{Key: keys.OpenHelp, Name: "open help"},
		{Key: "ctrl+o", Name: "connection picker"},
		{Key: keys.FocusLeft + "/" + keys.FocusRight, Name: "move focus"},
		{Key: "</>", Name: "resize sidebar"},
	}
	switch m.focus {
	case FocusConnections:
		commands = append(commands, m.connections.Commands()...)
	case FocusDatabaseList:
		commands = append(commands, m.tree.Commands()...)
	case FocusTabPanel:
		commands = append(commands, m.tabPanel.Commands(keys)...)
	}
	return commands
}

// View renders the entire application.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	var view string
	if m.focus == FocusConnections {
		view = m.connections.View()
	} else {
		view = lipgloss.JoinHorizontal(lipgloss.Top, m.tree.View(), m.tabPanel.View())
	}

	if m.errPopup.Visible() {
		return m.errPopup.View()
	}
	if m.help.Visible() {
		return m.help.View()
	}
	return view
}

// Shared exposes the pool cell, used on shutdown.
func (m Model) Shared() *adapter.SharedPool {
	return m.shared
}
