// Package schema defines the value types the UI displays: databases, their
// children (tables, or named schemas grouping tables), and the polymorphic
// rows shown by the properties grids.
package schema

// Database is one database with its ordered children.
type Database struct {
	Name     string
	Children []Child
}

// Child is either a table or a named schema. Exactly one field is set.
type Child struct {
	Table  *Table
	Schema *Schema
}

// Schema is a named group of tables (PostgreSQL schemas).
type Schema struct {
	Name   string
	Tables []Table
}

// Table identifies one table. Engine and the timestamps are only populated
// by backends that expose them.
type Table struct {
	Name       string
	Schema     string
	Engine     string
	CreateTime string
	UpdateTime string
	Database   string
}

// Equals reports table identity by (database, schema, name).
func (t Table) Equals(o Table) bool {
	return t.Database == o.Database && t.Schema == o.Schema && t.Name == o.Name
}

// Tables returns every table reachable from the database, whether it sits
// directly under the database or inside a schema.
func (d Database) Tables() []Table {
	var tables []Table
	for _, c := range d.Children {
		switch {
		case c.Table != nil:
			tables = append(tables, *c.Table)
		case c.Schema != nil:
			tables = append(tables, c.Schema.Tables...)
		}
	}
	return tables
}

// TableRow is a displayable row of table metadata. Fields returns the header
// labels and Cells the matching values; both slices have equal length.
type TableRow interface {
	Fields() []string
	Cells() []string
}

// Column describes one table column.
type Column struct {
	Name     string
	Type     string
	Nullable string
	Default  string
	Extra    string
}

func (c Column) Fields() []string {
	return []string{"name", "type", "nullable", "default", "extra"}
}

func (c Column) Cells() []string {
	return []string{c.Name, c.Type, c.Nullable, c.Default, c.Extra}
}

// Index describes one table index.
type Index struct {
	Name    string
	Columns string
	Type    string
	Unique  string
}

func (i Index) Fields() []string {
	return []string{"name", "columns", "type", "unique"}
}

func (i Index) Cells() []string {
	return []string{i.Name, i.Columns, i.Type, i.Unique}
}

// ForeignKey describes one foreign key constraint.
type ForeignKey struct {
	Name      string
	Column    string
	RefTable  string
	RefColumn string
}

func (f ForeignKey) Fields() []string {
	return []string{"name", "column", "ref table", "ref column"}
}

func (f ForeignKey) Cells() []string {
	return []string{f.Name, f.Column, f.RefTable, f.RefColumn}
}

// Constraint describes one table constraint.
type Constraint struct {
	Name   string
	Type   string
	Column string
}

func (c Constraint) Fields() []string {
	return []string{"name", "type", "column"}
}

func (c Constraint) Cells() []string {
	return []string{c.Name, c.Type, c.Column}
}
