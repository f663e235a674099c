// Package adapter defines the contract every database backend implements
// and the registry the CLI selects backends from.
package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/andyslucky/gobang/internal/schema"
)

// RecordsLimitPerPage bounds every GetRecords page.
const RecordsLimitPerPage = 200

var (
	ErrNotConnected = errors.New("not connected to database")
)

// UnsupportedColumnTypeError reports a column whose declared type has no
// string coercion.
type UnsupportedColumnTypeError struct {
	Column string
	Type   string
}

func (e *UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("column type not implemented: %q %s", e.Column, e.Type)
}

// Adapter creates pools for one backend.
type Adapter interface {
	Name() string
	Connect(ctx context.Context, dsn string) (Pool, error)
}

// Pool is an active connection pool. All cell values returned to the UI are
// strings: NULL renders as the literal "NULL", binary values as \xHH..
// sequences, arrays comma-joined.
type Pool interface {
	// Execute runs one statement. Statements returning rows produce a Read
	// result; everything else a Write result with the affected row count.
	Execute(ctx context.Context, query string) (*ExecuteResult, error)

	GetDatabases(ctx context.Context) ([]schema.Database, error)
	GetTables(ctx context.Context, database string) ([]schema.Child, error)

	// GetRecords returns at most RecordsLimitPerPage rows of the table
	// starting at the given row offset, applying filter as a WHERE predicate
	// when non-empty.
	GetRecords(ctx context.Context, database *schema.Database, table *schema.Table, offset int, filter string) ([]string, [][]string, error)

	GetColumns(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error)
	GetConstraints(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error)
	GetForeignKeys(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error)
	GetIndexes(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error)

	// GetKeywords returns the backend's reserved words for completion.
	GetKeywords() []string

	// Close is idempotent.
	Close()
}

// ExecuteResult is the outcome of Execute: a read (headers + rows) or a
// write (updated row count). Reads that are not a simple table select carry
// the synthetic "-" database and table identifiers.
type ExecuteResult struct {
	IsRead      bool
	Headers     []string
	Rows        [][]string
	Database    schema.Database
	Table       schema.Table
	UpdatedRows uint64
}

// NewReadResult builds a Read result with the synthetic identifiers.
func NewReadResult(headers []string, rows [][]string) *ExecuteResult {
	return &ExecuteResult{
		IsRead:   true,
		Headers:  headers,
		Rows:     rows,
		Database: schema.Database{Name: "-"},
		Table:    schema.Table{Name: "-"},
	}
}

// NewWriteResult builds a Write result.
func NewWriteResult(updated uint64) *ExecuteResult {
	return &ExecuteResult{UpdatedRows: updated}
}

// Registry holds registered adapters by name.
var Registry = map[string]Adapter{}

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	Registry[a.Name()] = a
}

// DefaultKeywords is the baseline completion keyword list every backend
// extends.
var DefaultKeywords = []string{
	"IN", "AND", "OR", "NOT", "NULL", "IS",
	"SELECT", "INSERT", "UPDATE", "DELETE",
	"FROM", "LIMIT", "WHERE", "LIKE",
}
