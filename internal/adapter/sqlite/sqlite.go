// Package sqlite implements the pool contract for SQLite files.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/schema"
)

func init() {
	adapter.Register(&sqliteAdapter{})
}

type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string { return "sqlite" }

func (a *sqliteAdapter) Connect(ctx context.Context, dsn string) (adapter.Pool, error) {
	dsn = normalizeDSN(dsn)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	dbName := dsn
	if dsn != ":memory:" {
		dbName = filepath.Base(dsn)
	}

	return &sqlitePool{db: db, dbName: dbName}, nil
}

// normalizeDSN strips common SQLite URI prefixes.
func normalizeDSN(dsn string) string {
	if strings.HasPrefix(dsn, "sqlite://") {
		return strings.TrimPrefix(dsn, "sqlite://")
	}
	if strings.HasPrefix(dsn, "file:") {
		return strings.TrimPrefix(dsn, "file:")
	}
	return dsn
}

type sqlitePool struct {
	db        *sql.DB
	dbName    string
	closeOnce sync.Once
}

func (p *sqlitePool) Close() {
	p.closeOnce.Do(func() { p.db.Close() })
}

func (p *sqlitePool) GetKeywords() []string {
	keywords := make([]string, len(adapter.DefaultKeywords))
	copy(keywords, adapter.DefaultKeywords)
	return append(keywords,
		"PRAGMA", "AUTOINCREMENT", "GLOB", "ATTACH", "DETACH",
		"REINDEX", "WITHOUT", "ROWID",
	)
}

// GetDatabases returns a single database named after the opened file.
func (p *sqlitePool) GetDatabases(ctx context.Context) ([]schema.Database, error) {
	children, err := p.GetTables(ctx, p.dbName)
	if err != nil {
		return nil, err
	}
	return []schema.Database{{Name: p.dbName, Children: children}}, nil
}

// GetTables lists the user tables of the opened file. A SQLite connection is
// single-database, so the database argument is ignored.
func (p *sqlitePool) GetTables(ctx context.Context, database string) ([]schema.Child, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("sqlite: tables: %w", err)
	}
	defer rows.Close()

	var children []schema.Child
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: tables scan: %w", err)
		}
		t := schema.Table{Name: name, Database: p.dbName}
		children = append(children, schema.Child{Table: &t})
	}
	return children, rows.Err()
}

func (p *sqlitePool) GetRecords(ctx context.Context, database *schema.Database, table *schema.Table, offset int, filter string) ([]string, [][]string, error) {
	var q string
	if filter != "" {
		q = fmt.Sprintf(
			`SELECT * FROM %q WHERE %s LIMIT %d OFFSET %d`,
			table.Name, filter, adapter.RecordsLimitPerPage, offset,
		)
	} else {
		q = fmt.Sprintf(
			`SELECT * FROM %q LIMIT %d OFFSET %d`,
			table.Name, adapter.RecordsLimitPerPage, offset,
		)
	}

	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	return adapter.ScanRows(rows)
}

func (p *sqlitePool) GetColumns(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table.Name))
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns: %w", err)
	}
	defer rows.Close()

	var columns []schema.TableRow
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("sqlite: columns scan: %w", err)
		}
		col := schema.Column{Name: name, Type: colType}
		if notNull == 0 {
			col.Nullable = "YES"
		} else {
			col.Nullable = "NO"
		}
		if dfltValue.Valid {
			col.Default = dfltValue.String
		}
		if pk > 0 {
			col.Extra = "PRIMARY KEY"
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// GetConstraints derives constraint rows from the primary key columns and
// unique indexes, the only constraint kinds SQLite exposes via PRAGMAs.
func (p *sqlitePool) GetConstraints(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	var constraints []schema.TableRow

	rows, err := p.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table.Name))
	if err != nil {
		return nil, fmt.Errorf("sqlite: constraints: %w", err)
	}
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: constraints scan: %w", err)
		}
		if pk > 0 {
			constraints = append(constraints, schema.Constraint{
				Name:   "PRIMARY",
				Type:   "PRIMARY KEY",
				Column: name,
			})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries, err := p.indexList(ctx, table.Name)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.unique || entry.origin != "u" {
			continue
		}
		cols, err := p.indexColumns(ctx, entry.name)
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, schema.Constraint{
			Name:   entry.name,
			Type:   "UNIQUE",
			Column: strings.Join(cols, ", "),
		})
	}
	return constraints, nil
}

func (p *sqlitePool) GetForeignKeys(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", table.Name))
	if err != nil {
		return nil, fmt.Errorf("sqlite: foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []schema.TableRow
	for rows.Next() {
		var (
			id       int
			seq      int
			refTable string
			from     string
			to       string
			onUpdate string
			onDelete string
			match    string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("sqlite: foreign keys scan: %w", err)
		}
		fks = append(fks, schema.ForeignKey{
			Name:      fmt.Sprintf("fk_%s_%d", table.Name, id),
			Column:    from,
			RefTable:  refTable,
			RefColumn: to,
		})
	}
	return fks, rows.Err()
}

func (p *sqlitePool) GetIndexes(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	entries, err := p.indexList(ctx, table.Name)
	if err != nil {
		return nil, err
	}

	var indexes []schema.TableRow
	for _, entry := range entries {
		cols, err := p.indexColumns(ctx, entry.name)
		if err != nil {
			return nil, err
		}
		unique := "NO"
		if entry.unique {
			unique = "YES"
		}
		indexes = append(indexes, schema.Index{
			Name:    entry.name,
			Columns: strings.Join(cols, ", "),
			Type:    "b-tree",
			Unique:  unique,
		})
	}
	return indexes, nil
}

type indexEntry struct {
	name   string
	unique bool
	origin string
}

func (p *sqlitePool) indexList(ctx context.Context, table string) ([]indexEntry, error) {
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("sqlite: index_list: %w", err)
	}
	defer rows.Close()

	var entries []indexEntry
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, fmt.Errorf("sqlite: index_list scan: %w", err)
		}
		entries = append(entries, indexEntry{name: name, unique: unique == 1, origin: origin})
	}
	return entries, rows.Err()
}

func (p *sqlitePool) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%q)", index))
	if err != nil {
		return nil, fmt.Errorf("sqlite: index_info: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			seqno int
			cid   int
			name  sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, fmt.Errorf("sqlite: index_info scan: %w", err)
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}

func (p *sqlitePool) Execute(ctx context.Context, query string) (*adapter.ExecuteResult, error) {
	if adapter.IsSelectQuery(query) {
		rows, err := p.db.QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		headers, data, err := adapter.ScanRows(rows)
		if err != nil {
			return nil, err
		}
		return adapter.NewReadResult(headers, data), nil
	}

	result, err := p.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}
	affected, _ := result.RowsAffected()
	return adapter.NewWriteResult(uint64(affected)), nil
}
