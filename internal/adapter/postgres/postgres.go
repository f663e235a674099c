// Package postgres implements the pool contract for PostgreSQL servers.
package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/schema"
)

func init() {
	adapter.Register(&postgresAdapter{})
}

type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Connect(ctx context.Context, dsn string) (adapter.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &pgPool{pool: pool, dbName: extractDBName(dsn)}, nil
}

// extractDBName parses the database name from the DSN.
func extractDBName(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		return strings.TrimPrefix(u.Path, "/")
	}
	for _, part := range strings.Fields(dsn) {
		if strings.HasPrefix(part, "dbname=") {
			return strings.TrimPrefix(part, "dbname=")
		}
	}
	return ""
}

type pgPool struct {
	pool      *pgxpool.Pool
	dbName    string
	closeOnce sync.Once
}

func (p *pgPool) Close() {
	p.closeOnce.Do(p.pool.Close)
}

func (p *pgPool) GetKeywords() []string {
	keywords := make([]string, len(adapter.DefaultKeywords))
	copy(keywords, adapter.DefaultKeywords)
	return append(keywords,
		"ILIKE", "RETURNING", "SERIAL", "LATERAL", "MATERIALIZED",
		"SCHEMA", "EXTENSION", "SEQUENCE", "COPY", "EXPLAIN", "ANALYZE",
	)
}

func (p *pgPool) GetDatabases(ctx context.Context) ([]schema.Database, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT datname FROM pg_database
		 WHERE datistemplate = false
		 ORDER BY datname`)
	if err != nil {
		return nil, fmt.Errorf("databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("databases scan: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// information_schema is only visible for the connected database; other
	// databases are listed without children.
	var dbs []schema.Database
	for _, name := range names {
		db := schema.Database{Name: name}
		if name == p.dbName {
			children, err := p.GetTables(ctx, name)
			if err != nil {
				return nil, err
			}
			db.Children = children
		}
		dbs = append(dbs, db)
	}
	return dbs, nil
}

func (p *pgPool) GetTables(ctx context.Context, database string) ([]schema.Child, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT table_schema, table_name
		 FROM information_schema.tables
		 WHERE table_catalog = $1
		   AND table_schema NOT IN ('pg_catalog', 'information_schema')
		 ORDER BY table_schema, table_name`, database)
	if err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	defer rows.Close()

	schemaMap := make(map[string]*schema.Schema)
	var order []string
	for rows.Next() {
		var schemaName, tableName string
		if err := rows.Scan(&schemaName, &tableName); err != nil {
			return nil, fmt.Errorf("tables scan: %w", err)
		}
		s, ok := schemaMap[schemaName]
		if !ok {
			s = &schema.Schema{Name: schemaName}
			schemaMap[schemaName] = s
			order = append(order, schemaName)
		}
		s.Tables = append(s.Tables, schema.Table{
			Name:     tableName,
			Schema:   schemaName,
			Database: database,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	children := make([]schema.Child, 0, len(order))
	for _, name := range order {
		children = append(children, schema.Child{Schema: schemaMap[name]})
	}
	return children, nil
}

func (p *pgPool) GetRecords(ctx context.Context, database *schema.Database, table *schema.Table, offset int, filter string) ([]string, [][]string, error) {
	schemaName := table.Schema
	if schemaName == "" {
		schemaName = "public"
	}

	var q string
	if filter != "" {
		q = fmt.Sprintf(
			`SELECT * FROM %q.%q WHERE %s LIMIT %d OFFSET %d`,
			schemaName, table.Name, filter, adapter.RecordsLimitPerPage, offset,
		)
	} else {
		q = fmt.Sprintf(
			`SELECT * FROM %q.%q LIMIT %d OFFSET %d`,
			schemaName, table.Name, adapter.RecordsLimitPerPage, offset,
		)
	}

	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("records: %w", err)
	}
	defer rows.Close()

	headers := fieldNames(rows.FieldDescriptions())
	var data [][]string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, nil, fmt.Errorf("records values: %w", err)
		}
		data = append(data, valuesToStrings(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("records rows: %w", err)
	}
	return headers, data, nil
}

func (p *pgPool) GetColumns(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	schemaName := table.Schema
	if schemaName == "" {
		schemaName = "public"
	}

	rows, err := p.pool.Query(ctx,
		`SELECT column_name, data_type, is_nullable,
		        COALESCE(column_default, ''), ''
		 FROM information_schema.columns
		 WHERE table_schema = $1 AND table_name = $2
		 ORDER BY ordinal_position`, schemaName, table.Name)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	defer rows.Close()

	var cols []schema.TableRow
	for rows.Next() {
		var c schema.Column
		if err := rows.Scan(&c.Name, &c.Type, &c.Nullable, &c.Default, &c.Extra); err != nil {
			return nil, fmt.Errorf("columns scan: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (p *pgPool) GetConstraints(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	schemaName := table.Schema
	if schemaName == "" {
		schemaName = "public"
	}

	rows, err := p.pool.Query(ctx,
		`SELECT tc.constraint_name, tc.constraint_type,
		        COALESCE(kcu.column_name, '')
		 FROM information_schema.table_constraints tc
		 LEFT JOIN information_schema.key_column_usage kcu
		      ON  kcu.constraint_name = tc.constraint_name
		      AND kcu.table_schema    = tc.table_schema
		 WHERE tc.table_schema = $1 AND tc.table_name = $2
		 ORDER BY tc.constraint_name, kcu.ordinal_position`, schemaName, table.Name)
	if err != nil {
		return nil, fmt.Errorf("constraints: %w", err)
	}
	defer rows.Close()

	var constraints []schema.TableRow
	for rows.Next() {
		var c schema.Constraint
		if err := rows.Scan(&c.Name, &c.Type, &c.Column); err != nil {
			return nil, fmt.Errorf("constraints scan: %w", err)
		}
		constraints = append(constraints, c)
	}
	return constraints, rows.Err()
}

func (p *pgPool) GetForeignKeys(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	schemaName := table.Schema
	if schemaName == "" {
		schemaName = "public"
	}

	rows, err := p.pool.Query(ctx,
		`SELECT tc.constraint_name,
		        kcu.column_name,
		        ccu.table_name  AS ref_table,
		        ccu.column_name AS ref_column
		 FROM information_schema.table_constraints tc
		 JOIN information_schema.key_column_usage kcu
		      ON kcu.constraint_name = tc.constraint_name
		     AND kcu.table_schema    = tc.table_schema
		 JOIN information_schema.constraint_column_usage ccu
		      ON ccu.constraint_name = tc.constraint_name
		     AND ccu.table_schema    = tc.table_schema
		 WHERE tc.constraint_type = 'FOREIGN KEY'
		   AND tc.table_schema    = $1
		   AND tc.table_name      = $2
		 ORDER BY tc.constraint_name, kcu.ordinal_position`, schemaName, table.Name)
	if err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []schema.TableRow
	for rows.Next() {
		var fk schema.ForeignKey
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, fmt.Errorf("foreign keys scan: %w", err)
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (p *pgPool) GetIndexes(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	schemaName := table.Schema
	if schemaName == "" {
		schemaName = "public"
	}

	rows, err := p.pool.Query(ctx,
		`SELECT i.relname                          AS index_name,
		        string_agg(a.attname, ', ' ORDER BY k.n) AS columns,
		        am.amname                          AS index_type,
		        ix.indisunique                     AS is_unique
		 FROM pg_index ix
		 JOIN pg_class  t ON t.oid  = ix.indrelid
		 JOIN pg_class  i ON i.oid  = ix.indexrelid
		 JOIN pg_am    am ON am.oid = i.relam
		 JOIN pg_namespace n ON n.oid = t.relnamespace
		 JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, n) ON true
		 JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		 WHERE n.nspname = $1
		   AND t.relname = $2
		 GROUP BY i.relname, am.amname, ix.indisunique
		 ORDER BY i.relname`, schemaName, table.Name)
	if err != nil {
		return nil, fmt.Errorf("indexes: %w", err)
	}
	defer rows.Close()

	var indexes []schema.TableRow
	for rows.Next() {
		var (
			idx    schema.Index
			unique bool
		)
		if err := rows.Scan(&idx.Name, &idx.Columns, &idx.Type, &unique); err != nil {
			return nil, fmt.Errorf("indexes scan: %w", err)
		}
		if unique {
			idx.Unique = "YES"
		} else {
			idx.Unique = "NO"
		}
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

func (p *pgPool) Execute(ctx context.Context, query string) (*adapter.ExecuteResult, error) {
	if adapter.IsSelectQuery(query) {
		rows, err := p.pool.Query(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("execute: %w", err)
		}
		defer rows.Close()

		headers := fieldNames(rows.FieldDescriptions())
		var data [][]string
		for rows.Next() {
			vals, err := rows.Values()
			if err != nil {
				return nil, fmt.Errorf("execute values: %w", err)
			}
			data = append(data, valuesToStrings(vals))
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("execute rows: %w", err)
		}
		return adapter.NewReadResult(headers, data), nil
	}

	tag, err := p.pool.Exec(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return adapter.NewWriteResult(uint64(tag.RowsAffected())), nil
}

func fieldNames(fds []pgconn.FieldDescription) []string {
	names := make([]string, len(fds))
	for i, fd := range fds {
		names[i] = fd.Name
	}
	return names
}

// valuesToStrings converts a row of pgx values to display strings.
func valuesToStrings(vals []any) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = valueToString(v)
	}
	return out
}

// valueToString coerces a single value per type. Only genuinely opaque
// values reach the fmt fallback at the end.
func valueToString(v any) string {
	if v == nil {
		return "NULL"
	}
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return adapter.HexBytes(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return fmt.Sprintf("%g", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case [16]byte:
		// UUID
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	case []string:
		return strings.Join(val, ",")
	case []int32:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return strings.Join(parts, ",")
	case []int64:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return strings.Join(parts, ",")
	case []float64:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = fmt.Sprintf("%g", n)
		}
		return strings.Join(parts, ",")
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = valueToString(e)
		}
		return strings.Join(parts, ",")
	case pgtype.Numeric:
		dv, err := val.Value()
		if err != nil || dv == nil {
			return "NULL"
		}
		if s, ok := dv.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", dv)
	default:
		return fmt.Sprintf("%v", v)
	}
}
