package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/schema"
)

func openPool(t *testing.T) adapter.Pool {
	t.Helper()
	a := &sqliteAdapter{}
	pool, err := a.Connect(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func mustExec(t *testing.T, pool adapter.Pool, query string) {
	t.Helper()
	if _, err := pool.Execute(context.Background(), query); err != nil {
		t.Fatalf("execute %q: %v", query, err)
	}
}

func TestNormalizeDSN(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"sqlite:///tmp/a.db", "/tmp/a.db"},
		{"file:/tmp/a.db", "/tmp/a.db"},
		{"/tmp/a.db", "/tmp/a.db"},
	}
	for _, c := range cases {
		if got := normalizeDSN(c.in); got != c.want {
			t.Fatalf("normalizeDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSingleDatabaseListing(t *testing.T) {
	pool := openPool(t)
	mustExec(t, pool, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	mustExec(t, pool, "CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER REFERENCES users(id))")

	dbs, err := pool.GetDatabases(context.Background())
	if err != nil {
		t.Fatalf("databases: %v", err)
	}
	if len(dbs) != 1 {
		t.Fatalf("expected a single database for a sqlite file, got %d", len(dbs))
	}

	tables := dbs[0].Tables()
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if tables[0].Name != "orders" || tables[1].Name != "users" {
		t.Fatalf("unexpected table order %v", tables)
	}
}

func TestRecordsPagination(t *testing.T) {
	pool := openPool(t)
	mustExec(t, pool, "CREATE TABLE nums (n INTEGER)")
	mustExec(t, pool,
		"INSERT INTO nums WITH RECURSIVE c(value) AS "+
			"(SELECT 0 UNION ALL SELECT value+1 FROM c WHERE value < 249) "+
			"SELECT value FROM c")

	db := schema.Database{Name: "test.db"}
	table := schema.Table{Name: "nums"}

	headers, rows, err := pool.GetRecords(context.Background(), &db, &table, 0, "")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(headers) != 1 || headers[0] != "n" {
		t.Fatalf("unexpected headers %v", headers)
	}
	if len(rows) != adapter.RecordsLimitPerPage {
		t.Fatalf("expected a full page of %d, got %d", adapter.RecordsLimitPerPage, len(rows))
	}

	_, rows, err = pool.GetRecords(context.Background(), &db, &table, 200, "")
	if err != nil {
		t.Fatalf("records page 2: %v", err)
	}
	if len(rows) != 50 {
		t.Fatalf("expected 50 remaining rows, got %d", len(rows))
	}
}

func TestRecordsFilter(t *testing.T) {
	pool := openPool(t)
	mustExec(t, pool, "CREATE TABLE t (id INTEGER, name TEXT)")
	mustExec(t, pool, "INSERT INTO t VALUES (1, 'a'), (2, 'b'), (3, NULL)")

	db := schema.Database{Name: "test.db"}
	table := schema.Table{Name: "t"}

	_, rows, err := pool.GetRecords(context.Background(), &db, &table, 0, "id = 1")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "1" {
		t.Fatalf("expected single filtered row, got %v", rows)
	}
}

func TestNullRendering(t *testing.T) {
	pool := openPool(t)
	mustExec(t, pool, "CREATE TABLE t (a TEXT)")
	mustExec(t, pool, "INSERT INTO t VALUES (NULL)")

	result, err := pool.Execute(context.Background(), "SELECT a FROM t")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.IsRead {
		t.Fatal("expected read result")
	}
	if result.Rows[0][0] != "NULL" {
		t.Fatalf("expected literal NULL, got %q", result.Rows[0][0])
	}
}

func TestColumnsAndConstraints(t *testing.T) {
	pool := openPool(t)
	mustExec(t, pool, "CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT UNIQUE, name TEXT NOT NULL)")

	db := schema.Database{Name: "test.db"}
	table := schema.Table{Name: "users"}

	cols, err := pool.GetColumns(context.Background(), &db, &table)
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(cols))
	}

	first := cols[0].(schema.Column)
	if first.Name != "id" || first.Extra != "PRIMARY KEY" {
		t.Fatalf("unexpected first column %+v", first)
	}

	constraints, err := pool.GetConstraints(context.Background(), &db, &table)
	if err != nil {
		t.Fatalf("constraints: %v", err)
	}
	foundPK, foundUnique := false, false
	for _, c := range constraints {
		constraint := c.(schema.Constraint)
		if constraint.Type == "PRIMARY KEY" {
			foundPK = true
		}
		if constraint.Type == "UNIQUE" {
			foundUnique = true
		}
	}
	if !foundPK || !foundUnique {
		t.Fatalf("expected primary key and unique constraints, got %v", constraints)
	}
}

func TestForeignKeys(t *testing.T) {
	pool := openPool(t)
	mustExec(t, pool, "CREATE TABLE users (id INTEGER PRIMARY KEY)")
	mustExec(t, pool, "CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER REFERENCES users(id))")

	db := schema.Database{Name: "test.db"}
	table := schema.Table{Name: "orders"}

	fks, err := pool.GetForeignKeys(context.Background(), &db, &table)
	if err != nil {
		t.Fatalf("foreign keys: %v", err)
	}
	if len(fks) != 1 {
		t.Fatalf("expected 1 foreign key, got %d", len(fks))
	}
	fk := fks[0].(schema.ForeignKey)
	if fk.Column != "user_id" || fk.RefTable != "users" {
		t.Fatalf("unexpected foreign key %+v", fk)
	}
}

func TestWriteResult(t *testing.T) {
	pool := openPool(t)
	mustExec(t, pool, "CREATE TABLE t (a INTEGER)")
	mustExec(t, pool, "INSERT INTO t VALUES (1), (2), (3)")

	result, err := pool.Execute(context.Background(), "UPDATE t SET a = 0")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.IsRead {
		t.Fatal("expected write result")
	}
	if result.UpdatedRows != 3 {
		t.Fatalf("expected 3 updated rows, got %d", result.UpdatedRows)
	}
}
