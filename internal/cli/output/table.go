package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table buffers rows and prints them as aligned columns separated by two
// spaces. Widths are measured in terminal cells so wide characters in
// file names stay aligned.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
	right   map[int]bool
	quiet   bool
}

func NewTable(out io.Writer, headers []string, quiet bool) *Table {
	return &Table{
		out:     out,
		headers: headers,
		right:   make(map[int]bool),
		quiet:   quiet,
	}
}

// AlignRight right-aligns the given columns, for ids and sizes.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *Table) Append(row []string) {
	t.rows = append(t.rows, row)
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Render() {
	if t.quiet {
		return
	}

	widths := make([]int, len(t.headers))
	for _, row := range append([][]string{t.headers}, t.rows...) {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	t.renderRow(t.headers, widths)
	for _, row := range t.rows {
		t.renderRow(row, widths)
	}
}

func (t *Table) renderRow(cells []string, widths []int) {
	last := len(cells) - 1
	parts := make([]string, len(cells))
	for i, cell := range cells {
		switch {
		case i >= len(widths):
			parts[i] = cell
		case t.right[i]:
			parts[i] = runewidth.FillLeft(cell, widths[i])
		case i == last:
			parts[i] = cell
		default:
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	fmt.Fprintln(t.out, strings.Join(parts, "  "))
}
