package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a parsed A1 range. Columns are 0-indexed, rows 1-indexed. A zero
// row bound leaves that side of the range open.
type Range struct {
	FirstCol int
	LastCol  int
	FirstRow int
	LastRow  int
}

// ParseRange parses "A:N", "K:K", "H5", "A2:N2" and "A2:N". A sheet-name
// prefix ("Sheet1!A:N") is ignored.
func ParseRange(a1 string) (Range, error) {
	s := strings.TrimSpace(a1)
	if i := strings.LastIndex(s, "!"); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return Range{}, fmt.Errorf("empty range")
	}

	first, last, isPair := strings.Cut(s, ":")
	fc, fr, err := parseCell(first)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", a1, err)
	}
	if !isPair {
		if fc < 0 || fr == 0 {
			return Range{}, fmt.Errorf("range %q: single cell needs column and row", a1)
		}
		return Range{FirstCol: fc, LastCol: fc, FirstRow: fr, LastRow: fr}, nil
	}

	lc, lr, err := parseCell(last)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", a1, err)
	}
	if fc < 0 || lc < 0 {
		return Range{}, fmt.Errorf("range %q: whole-row ranges are not supported", a1)
	}
	if lc < fc || (lr != 0 && lr < fr) {
		return Range{}, fmt.Errorf("range %q: end before start", a1)
	}
	return Range{FirstCol: fc, LastCol: lc, FirstRow: fr, LastRow: lr}, nil
}

// parseCell splits "AB12" into column 27 and row 12. Either part may be
// absent, in which case the column is -1 or the row is 0.
func parseCell(s string) (col, row int, err error) {
	s = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, "$", "")))
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	letters, digits := s[:i], s[i:]
	if letters == "" && digits == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}

	col = -1
	if letters != "" {
		col = ColumnIndex(letters)
	}
	if digits != "" {
		row, err = strconv.Atoi(digits)
		if err != nil || row < 1 {
			return 0, 0, fmt.Errorf("invalid row %q", digits)
		}
	}
	return col, row, nil
}

// ColumnIndex converts a column name ("A", "N", "AA") to a 0-based index.
func ColumnIndex(name string) int {
	idx := 0
	for _, r := range strings.ToUpper(name) {
		idx = idx*26 + int(r-'A'+1)
	}
	return idx - 1
}

// ColumnName converts a 0-based column index to its letter name.
func ColumnName(idx int) string {
	name := ""
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		name = string(rune('A'+(n-1)%26)) + name
	}
	return name
}

func (r Range) String() string {
	first := ColumnName(r.FirstCol)
	last := ColumnName(r.LastCol)
	if r.FirstRow > 0 {
		first += strconv.Itoa(r.FirstRow)
	}
	if r.LastRow > 0 {
		last += strconv.Itoa(r.LastRow)
	}
	if r.FirstRow > 0 && r.FirstRow == r.LastRow && r.FirstCol == r.LastCol {
		return first
	}
	return first + ":" + last
}

// Grid is a row-major cell matrix where Grid[0] is sheet row 1. Backends
// that keep whole sheets in memory or in a database use it to serve range
// reads and writes.
type Grid [][]string

// Read returns the cells inside r the way the Sheets API does: trailing
// blank cells are dropped from each row and trailing blank rows are dropped.
func (g Grid) Read(r Range) [][]string {
	first := max(r.FirstRow, 1)
	last := len(g)
	if r.LastRow > 0 {
		last = min(r.LastRow, len(g))
	}

	var out [][]string
	for rowNum := first; rowNum <= last; rowNum++ {
		src := g[rowNum-1]
		var row []string
		for col := r.FirstCol; col <= r.LastCol && col < len(src); col++ {
			row = append(row, src[col])
		}
		out = append(out, trimRow(row))
	}

	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out
}

// Write stores values with their top-left corner at r's first cell, growing
// the grid as needed. It returns the grid and the 1-indexed rows it touched.
func (g Grid) Write(r Range, values [][]string) (Grid, []int) {
	startRow := max(r.FirstRow, 1)
	touched := make([]int, 0, len(values))

	for i, vals := range values {
		rowNum := startRow + i
		for len(g) < rowNum {
			g = append(g, nil)
		}
		row := g[rowNum-1]
		for len(row) < r.FirstCol+len(vals) {
			row = append(row, "")
		}
		copy(row[r.FirstCol:], vals)
		g[rowNum-1] = trimRow(row)
		touched = append(touched, rowNum)
	}
	return g, touched
}

// DeleteRows removes rows start..end (1-indexed, inclusive). Bounds past the
// end of the grid are clamped.
func (g Grid) DeleteRows(start, end int) Grid {
	if start > len(g) {
		return g
	}
	end = min(end, len(g))
	return append(g[:start-1], g[end:]...)
}

func trimRow(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	if n == 0 {
		return nil
	}
	return row[:n]
}
