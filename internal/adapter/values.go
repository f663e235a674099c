package adapter

import (
	"database/sql"
	"fmt"
	"strings"
)

// HexBytes renders binary data as a \xHH.. sequence.
func HexBytes(b []byte) string {
	var sb strings.Builder
	sb.WriteString(`\x`)
	for _, v := range b {
		fmt.Fprintf(&sb, "%02x", v)
	}
	return sb.String()
}

// binaryTypes are database/sql column type names whose values are rendered
// as hex.
var binaryTypes = map[string]bool{
	"BLOB": true, "TINYBLOB": true, "MEDIUMBLOB": true, "LONGBLOB": true,
	"BINARY": true, "VARBINARY": true, "BYTEA": true,
}

// IsBinaryType reports whether the declared column type holds binary data.
func IsBinaryType(typeName string) bool {
	return binaryTypes[strings.ToUpper(typeName)]
}

// ScanRows drains a database/sql result set into header and string-cell
// form. NULL scans to "NULL"; binary columns are hex-encoded.
func ScanRows(rows *sql.Rows) ([]string, [][]string, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, err
	}

	headers := make([]string, len(colTypes))
	binary := make([]bool, len(colTypes))
	for i, ct := range colTypes {
		headers[i] = ct.Name()
		binary[i] = IsBinaryType(ct.DatabaseTypeName())
	}

	var out [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(headers))
		ptrs := make([]any, len(headers))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(headers))
		for i, v := range values {
			switch {
			case !v.Valid:
				row[i] = "NULL"
			case binary[i]:
				row[i] = HexBytes([]byte(v.String))
			default:
				row[i] = v.String
			}
		}
		out = append(out, row)
	}
	return headers, out, rows.Err()
}

// IsSelectQuery reports whether the trimmed, uppercased query starts with a
// keyword that produces a result set.
func IsSelectQuery(query string) bool {
	upper := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH", "PRAGMA", "VALUES"} {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}
