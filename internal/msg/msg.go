// Package msg defines the typed broadcast messages exchanged between
// components. Each message is a plain struct delivered through the Bubble
// Tea runtime; receivers switch on the concrete type and ignore kinds they
// do not recognize, which is the extension point for new message types.
package msg

import (
	"github.com/andyslucky/gobang/internal/config"
	"github.com/andyslucky/gobang/internal/schema"
)

// ConnectionChangedMsg announces that the user picked a connection. A nil
// Conn means disconnected.
type ConnectionChangedMsg struct {
	Conn *config.Connection
}

// PoolReadyMsg is published once the previous pool has been closed and the
// new one installed in the shared cell.
type PoolReadyMsg struct {
	Conn *config.Connection
}

// TableSelectedMsg announces that a table was chosen in the sidebar.
type TableSelectedMsg struct {
	Database schema.Database
	Table    schema.Table
}

// TabNewMsg requests a new SQL editor tab.
type TabNewMsg struct{}

// TabCloseCurrentMsg requests closing the selected tab. Fixed tabs ignore it.
type TabCloseCurrentMsg struct{}

// TabRenameMsg renames the tab at Index.
type TabRenameMsg struct {
	Index int
	Name  string
}

// ExecuteQueryMsg submits the editor buffer of the given tab for execution.
type ExecuteQueryMsg struct {
	TabID int
	Query string
}

// DatabasesLoadedMsg carries the sidebar's database list. Gen guards against
// results from a connection that has since been replaced.
type DatabasesLoadedMsg struct {
	Databases []schema.Database
	Gen       uint64
}

// RecordsLoadedMsg carries a fresh first page for the record table. A
// non-nil Err resets the view to empty.
type RecordsLoadedMsg struct {
	Headers []string
	Rows    [][]string
	Err     error
	Gen     uint64
}

// RecordPageMsg carries a follow-up page appended to the record table. An
// empty Rows marks end of data; a non-nil Err leaves the table unchanged.
type RecordPageMsg struct {
	Rows [][]string
	Err  error
	Gen  uint64
}

// PropertiesLoadedMsg carries the four metadata collections for a table.
type PropertiesLoadedMsg struct {
	Columns     []schema.TableRow
	Constraints []schema.TableRow
	ForeignKeys []schema.TableRow
	Indexes     []schema.TableRow
	Err         error
	Gen         uint64
}

// QueryResultMsg carries the outcome of an editor query.
type QueryResultMsg struct {
	TabID       int
	Headers     []string
	Rows        [][]string
	UpdatedRows uint64
	IsRead      bool
	Err         error
	Gen         uint64
}

// ErrMsg surfaces an error through the modal overlay.
type ErrMsg struct {
	Err error
}
