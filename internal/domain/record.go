package domain

import (
	"bytes"
	"encoding/json"
)

// ParsedRecord is one table row as an ordered column to value mapping.
type ParsedRecord struct {
	columns []string
	values  []string
}

// NewParsedRecord pairs columns with values positionally. Both slices must
// have the same length.
func NewParsedRecord(columns, values []string) ParsedRecord {
	return ParsedRecord{columns: columns, values: values}
}

// Columns returns the column names in order.
func (r ParsedRecord) Columns() []string {
	return r.columns
}

// Values returns the cell values in column order.
func (r ParsedRecord) Values() []string {
	return r.values
}

// Get returns the value for a column.
func (r ParsedRecord) Get(column string) (string, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return "", false
}

// MarshalJSON encodes the record as an object with keys in column order.
func (r ParsedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RejectedRow is a data row dropped because its cell count did not match the schema.
type RejectedRow struct {
	Line  int      `json:"line"`
	Cells []string `json:"cells"`
}

// TableResult is the structured form of a generated table.
type TableResult struct {
	Columns  []string       `json:"columns"`
	Records  []ParsedRecord `json:"records"`
	Rejected []RejectedRow  `json:"rejected,omitempty"`
}

// Empty reports whether no records were parsed.
func (t *TableResult) Empty() bool {
	return t == nil || len(t.Records) == 0
}

// Column collects one column's values across records.
func (t *TableResult) Column(name string) []string {
	if t == nil {
		return nil
	}
	var out []string
	for _, r := range t.Records {
		if v, ok := r.Get(name); ok {
			out = append(out, v)
		}
	}
	return out
}
