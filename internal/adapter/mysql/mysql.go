// Package mysql implements the pool contract for MySQL servers.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/schema"
)

func init() {
	adapter.Register(&mysqlAdapter{})
}

type mysqlAdapter struct{}

func (a *mysqlAdapter) Name() string { return "mysql" }

func (a *mysqlAdapter) Connect(ctx context.Context, dsn string) (adapter.Pool, error) {
	goDriverDSN, err := normalizeDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: invalid dsn: %w", err)
	}

	db, err := sql.Open("mysql", goDriverDSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return &mysqlPool{db: db}, nil
}

// normalizeDSN converts a mysql:// URL-style DSN to go-sql-driver format, or
// passes through a DSN that is already in that format. parseTime=true is
// forced so time columns scan as text correctly.
func normalizeDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", err
		}

		user := u.User.Username()
		pass, _ := u.User.Password()

		host := u.Hostname()
		port := u.Port()
		if port == "" {
			port = "3306"
		}

		dbName := strings.TrimPrefix(u.Path, "/")

		var userInfo string
		if pass != "" {
			userInfo = fmt.Sprintf("%s:%s", user, pass)
		} else if user != "" {
			userInfo = user
		}

		query := u.RawQuery
		if query == "" {
			query = "parseTime=true"
		} else if !strings.Contains(query, "parseTime") {
			query += "&parseTime=true"
		}

		return fmt.Sprintf("%s@tcp(%s:%s)/%s?%s", userInfo, host, port, dbName, query), nil
	}

	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}
	return dsn, nil
}

type mysqlPool struct {
	db        *sql.DB
	closeOnce sync.Once
}

func (p *mysqlPool) Close() {
	p.closeOnce.Do(func() { p.db.Close() })
}

func (p *mysqlPool) GetKeywords() []string {
	keywords := make([]string, len(adapter.DefaultKeywords))
	copy(keywords, adapter.DefaultKeywords)
	return append(keywords,
		"SHOW", "DESCRIBE", "USE", "DATABASES", "TABLES", "COLUMNS",
		"AUTO_INCREMENT", "ENGINE", "CHARSET", "COLLATE", "UNSIGNED",
	)
}

func (p *mysqlPool) GetDatabases(ctx context.Context) ([]schema.Database, error) {
	rows, err := p.db.QueryContext(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var dbs []schema.Database
	for _, name := range names {
		children, err := p.GetTables(ctx, name)
		if err != nil {
			return nil, err
		}
		dbs = append(dbs, schema.Database{Name: name, Children: children})
	}
	return dbs, nil
}

func (p *mysqlPool) GetTables(ctx context.Context, database string) ([]schema.Child, error) {
	const q = `
		SELECT TABLE_NAME,
		       COALESCE(ENGINE, ''),
		       COALESCE(CREATE_TIME, ''),
		       COALESCE(UPDATE_TIME, '')
		FROM information_schema.tables
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME`

	rows, err := p.db.QueryContext(ctx, q, database)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []schema.Child
	for rows.Next() {
		t := schema.Table{Database: database}
		if err := rows.Scan(&t.Name, &t.Engine, &t.CreateTime, &t.UpdateTime); err != nil {
			return nil, err
		}
		table := t
		children = append(children, schema.Child{Table: &table})
	}
	return children, rows.Err()
}

func (p *mysqlPool) GetRecords(ctx context.Context, database *schema.Database, table *schema.Table, offset int, filter string) ([]string, [][]string, error) {
	var q string
	if filter != "" {
		q = fmt.Sprintf(
			"SELECT * FROM `%s`.`%s` WHERE %s LIMIT %d, %d",
			database.Name, table.Name, filter, offset, adapter.RecordsLimitPerPage,
		)
	} else {
		q = fmt.Sprintf(
			"SELECT * FROM `%s`.`%s` LIMIT %d, %d",
			database.Name, table.Name, offset, adapter.RecordsLimitPerPage,
		)
	}

	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	return adapter.ScanRows(rows)
}

func (p *mysqlPool) GetColumns(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	const q = `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE,
		       COALESCE(COLUMN_DEFAULT, ''), EXTRA
		FROM information_schema.columns
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	rows, err := p.db.QueryContext(ctx, q, database.Name, table.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []schema.TableRow
	for rows.Next() {
		var c schema.Column
		if err := rows.Scan(&c.Name, &c.Type, &c.Nullable, &c.Default, &c.Extra); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (p *mysqlPool) GetConstraints(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	const q = `
		SELECT tc.CONSTRAINT_NAME, tc.CONSTRAINT_TYPE, COALESCE(kcu.COLUMN_NAME, '')
		FROM information_schema.table_constraints tc
		LEFT JOIN information_schema.key_column_usage kcu
			ON  kcu.CONSTRAINT_SCHEMA = tc.CONSTRAINT_SCHEMA
			AND kcu.CONSTRAINT_NAME   = tc.CONSTRAINT_NAME
			AND kcu.TABLE_NAME        = tc.TABLE_NAME
		WHERE tc.TABLE_SCHEMA = ? AND tc.TABLE_NAME = ?
		ORDER BY tc.CONSTRAINT_NAME, kcu.ORDINAL_POSITION`

	rows, err := p.db.QueryContext(ctx, q, database.Name, table.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var constraints []schema.TableRow
	for rows.Next() {
		var c schema.Constraint
		if err := rows.Scan(&c.Name, &c.Type, &c.Column); err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}
	return constraints, rows.Err()
}

func (p *mysqlPool) GetForeignKeys(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	const q = `
		SELECT CONSTRAINT_NAME, COLUMN_NAME,
		       REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
		FROM information_schema.key_column_usage
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		  AND REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION`

	rows, err := p.db.QueryContext(ctx, q, database.Name, table.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []schema.TableRow
	for rows.Next() {
		var fk schema.ForeignKey
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (p *mysqlPool) GetIndexes(ctx context.Context, database *schema.Database, table *schema.Table) ([]schema.TableRow, error) {
	const q = `
		SELECT INDEX_NAME, COLUMN_NAME, INDEX_TYPE, NON_UNIQUE
		FROM information_schema.statistics
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`

	rows, err := p.db.QueryContext(ctx, q, database.Name, table.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	indexMap := make(map[string]*schema.Index)
	var order []string

	for rows.Next() {
		var (
			idxName   string
			colName   string
			idxType   string
			nonUnique int
		)
		if err := rows.Scan(&idxName, &colName, &idxType, &nonUnique); err != nil {
			return nil, err
		}
		idx, ok := indexMap[idxName]
		if !ok {
			unique := "YES"
			if nonUnique == 1 {
				unique = "NO"
			}
			idx = &schema.Index{Name: idxName, Type: idxType, Unique: unique}
			indexMap[idxName] = idx
			order = append(order, idxName)
		}
		if idx.Columns == "" {
			idx.Columns = colName
		} else {
			idx.Columns += ", " + colName
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	indexes := make([]schema.TableRow, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, *indexMap[name])
	}
	return indexes, nil
}

func (p *mysqlPool) Execute(ctx context.Context, query string) (*adapter.ExecuteResult, error) {
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
