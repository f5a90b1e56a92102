package domain

import "strings"

// Schema is the ordered column list a generated table must follow. The same
// value renders the prompt's table header and drives the parser.
type Schema struct {
	Columns []string
}

// NewSchema copies columns into a Schema.
func NewSchema(columns ...string) Schema {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Schema{Columns: cols}
}

// Len returns the number of columns.
func (s Schema) Len() int {
	return len(s.Columns)
}

// HeaderRow renders the columns as a pipe-table header line.
func (s Schema) HeaderRow() string {
	return "| " + strings.Join(s.Columns, " | ") + " |"
}

// SeparatorRow renders the divider line that follows the header.
func (s Schema) SeparatorRow() string {
	parts := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		n := len([]rune(c)) + 2
		if n < 3 {
			n = 3
		}
		parts[i] = strings.Repeat("-", n)
	}
	return "|" + strings.Join(parts, "|") + "|"
}

// Index returns the position of a column name.
func (s Schema) Index(column string) (int, bool) {
	for i, c := range s.Columns {
		if c == column {
			return i, true
		}
	}
	return -1, false
}
