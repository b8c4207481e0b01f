// Package addr provides spreadsheet address arithmetic. Formula strings
// elsewhere in the module are assembled from these helpers, never from ad hoc
// interpolation.
package addr

import (
	"fmt"
	"strings"
)

// ColumnLetter converts a 1-based column index to its spreadsheet letter
// using bijective base-26 (A=1 ... Z=26, AA=27). Non-positive input returns
// the empty string.
func ColumnLetter(n int) string {
	var b []byte
	for n > 0 {
		m := (n - 1) % 26
		b = append([]byte{byte('A' + m)}, b...)
		n = (n - 1) / 26
	}
	return string(b)
}

// LetterToIndex is the inverse of ColumnLetter. Unknown characters yield 0.
func LetterToIndex(s string) int {
	n := 0
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if r < 'A' || r > 'Z' {
			return 0
		}
		n = n*26 + int(r-'A') + 1
	}
	return n
}

// Cell returns the A1-style reference for a 1-based column and row.
func Cell(col, row int) string {
	return fmt.Sprintf("%s%d", ColumnLetter(col), row)
}

// Range returns an A1-style rectangular range reference.
func Range(col1, row1, col2, row2 int) string {
	return Cell(col1, row1) + ":" + Cell(col2, row2)
}

// SheetCell returns a cross-sheet cell reference, quoting the sheet name when
// it contains characters Excel requires quoted.
func SheetCell(sheet string, col, row int) string {
	return quoteSheet(sheet) + "!" + Cell(col, row)
}

// SheetColumn returns a cross-sheet whole-column reference like Data!E:E.
func SheetColumn(sheet string, col int) string {
	l := ColumnLetter(col)
	return quoteSheet(sheet) + "!" + l + ":" + l
}

// SumRange builds a SUM over one column's row span.
func SumRange(col, row1, row2 int) string {
	return fmt.Sprintf("SUM(%s)", Range(col, row1, col, row2))
}

// SumCells builds a SUM over individual cells of one row. An empty column set
// degenerates to SUM(0).
func SumCells(cols []int, row int) string {
	if len(cols) == 0 {
		return "SUM(0)"
	}
	refs := make([]string, len(cols))
	for i, c := range cols {
		refs[i] = Cell(c, row)
	}
	return fmt.Sprintf("SUM(%s)", strings.Join(refs, ","))
}

func quoteSheet(name string) string {
	if strings.ContainsAny(name, " -'") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}
