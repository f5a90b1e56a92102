package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// PrintTable writes rows aligned under their column headers.
func PrintTable(w io.Writer, columns []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
