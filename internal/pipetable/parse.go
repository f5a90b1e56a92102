// Package pipetable turns pipe-delimited tables in model output into records.
package pipetable

import (
	"strings"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
)

// Parse extracts the table in raw and binds its data rows to columns.
//
// The first qualifying line is the model's own header and is discarded.
// Output without a header and at least one data row yields an empty result
// carrying the declared columns. Data rows whose cell count differs from
// len(columns) are rejected rather than padded or truncated.
func Parse(raw string, columns []string) *domain.TableResult {
	result := &domain.TableResult{
		Columns: columns,
		Records: []domain.ParsedRecord{},
	}

	type row struct {
		line  int
		cells []string
	}
	var rows []row
	for i, line := range strings.Split(raw, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}
		cells := splitCells(line)
		afterHeader := len(rows) == 1 && rows[0].line == i
		if isSeparator(cells, afterHeader) {
			continue
		}
		rows = append(rows, row{line: i + 1, cells: cells})
	}

	if len(rows) < 2 {
		return result
	}

	for _, r := range rows[1:] {
		if len(r.cells) != len(columns) {
			result.Rejected = append(result.Rejected, domain.RejectedRow{Line: r.line, Cells: r.cells})
			continue
		}
		result.Records = append(result.Records, domain.NewParsedRecord(columns, r.cells))
	}

	return result
}

// ParseSchema is Parse bound to a schema's columns.
func ParseSchema(raw string, schema domain.Schema) *domain.TableResult {
	return Parse(raw, schema.Columns)
}

// minDividerWidth is the narrowest divider cell accepted away from the header.
// Rows of single dashes are how models write "none" in every column.
const minDividerWidth = 3

// isSeparator matches header/body dividers such as |---|:---:|. Directly
// under the header any dash run counts; elsewhere every cell must be at
// least minDividerWidth wide.
func isSeparator(cells []string, afterHeader bool) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !isDividerCell(c) {
			return false
		}
		if !afterHeader && len(c) < minDividerWidth {
			return false
		}
	}
	return true
}

func isDividerCell(c string) bool {
	body := strings.TrimSuffix(strings.TrimPrefix(c, ":"), ":")
	return body != "" && strings.Trim(body, "-") == ""
}

func splitCells(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
