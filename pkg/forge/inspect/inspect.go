// Package inspect reads generated workbooks back into a compact structure.
// It backs the CLI's inspect command and the builder's round-trip tests.
package inspect

import (
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Row is one non-empty sheet row. C maps the 1-based column index (as a
// string, stable for JSON) to the cell's displayed value; F carries formulas
// for cells that have one.
type Row struct {
	R int               `json:"r"`
	C map[string]any    `json:"c"`
	F map[string]string `json:"f,omitempty"`
}

// Sheet is the read-back of one visible worksheet.
type Sheet struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

// Workbook reads every visible sheet of an xlsx file.
func Workbook(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Sheets(f)
}

// Sheets reads every visible sheet of an already-open workbook.
func Sheets(f *excelize.File) ([]Sheet, error) {
	var out []Sheet
	for _, name := range f.GetSheetList() {
		if visible, err := f.GetSheetVisible(name); err == nil && !visible {
			continue
		}
		rows, err := SheetRows(f, name)
		if err != nil {
			return nil, err
		}
		out = append(out, Sheet{Name: name, Rows: rows})
	}
	return out, nil
}

// SheetRows extracts the non-empty rows of one sheet, values parsed to
// numbers where they look numeric, formulas attached where present.
func SheetRows(f *excelize.File, sheetName string) ([]Row, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	var result []Row
	for rowIdx, row := range rows {
		rowNum := rowIdx + 1
		cellMap := make(map[string]any)
		formulaMap := make(map[string]string)

		for colIdx, cellValue := range row {
			colStr := strconv.Itoa(colIdx + 1)

			cellName, _ := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			if formula, err := f.GetCellFormula(sheetName, cellName); err == nil && formula != "" {
				formulaMap[colStr] = formula
			}
			if cellValue != "" {
				cellMap[colStr] = parseValue(cellValue)
			}
		}

		if len(cellMap) > 0 || len(formulaMap) > 0 {
			r := Row{R: rowNum, C: cellMap}
			if len(formulaMap) > 0 {
				r.F = formulaMap
			}
			result = append(result, r)
		}
	}
	return result, nil
}

// Cell returns one cell's displayed value (nil when out of range).
func Cell(sheets []Sheet, sheetName string, row, col int) any {
	for _, s := range sheets {
		if s.Name != sheetName {
			continue
		}
		for _, r := range s.Rows {
			if r.R == row {
				return r.C[strconv.Itoa(col)]
			}
		}
	}
	return nil
}

// SheetNames lists the read sheets in order.
func SheetNames(sheets []Sheet) []string {
	names := make([]string, 0, len(sheets))
	for _, s := range sheets {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// parseValue attempts to parse a displayed value as a number. Integers come
// back as int64, decimals as float64, everything else as the original string.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
