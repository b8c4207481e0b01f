package builder

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aurea33/forge-go/pkg/forge/addr"
	"github.com/aurea33/forge-go/pkg/forge/models"
)

const (
	headerRow    = 1
	firstDataRow = 2

	rowTotalKey    = "row_total"
	rowTotalHeader = "Total fila"

	// Validations extend past the example rows so the delivered sheet keeps
	// validating as the user types.
	validationSlack = 200
)

// DataSheetInfo records the geometry the dashboard builder needs to reference
// the data sheet: which columns exist (including the synthesized row-total
// column), where the data rows live and where the totals row landed.
type DataSheetInfo struct {
	Name        string
	Columns     []models.Column
	LastDataRow int
	TotalRow    int // 0 when no column-totals row was written
	RowTotalCol int // 0 when no row-total column was synthesized
}

// buildDataSheet renders the data sheet: headers, example rows, per-type
// number formats, synthesized totals, validations, styling, autofilter and a
// frozen header row. The spec is assumed validated (spec.Parse).
func buildDataSheet(f *excelize.File, ws *models.WorkbookSpec, st *stylist) (*DataSheetInfo, error) {
	sheet := ws.SheetNameData

	cols := make([]models.Column, len(ws.Columns))
	copy(cols, ws.Columns)

	rowTotalCol := 0
	if ws.Totals.RowTotals {
		cols = append(cols, models.Column{
			Header: rowTotalHeader,
			Key:    rowTotalKey,
			Type:   models.TypeCurrency,
			Width:  14,
		})
		rowTotalCol = len(cols)
	}

	for i, c := range cols {
		if err := f.SetCellValue(sheet, addr.Cell(i+1, headerRow), c.Header); err != nil {
			return nil, err
		}
		l := addr.ColumnLetter(i + 1)
		w := c.Width
		if w <= 0 {
			w = 18
		}
		if err := f.SetColWidth(sheet, l, l, w); err != nil {
			return nil, err
		}
	}
	if err := f.SetRowHeight(sheet, headerRow, 22); err != nil {
		return nil, err
	}

	// Example rows land in spec order; missing keys stay empty cells.
	for i, row := range ws.ExampleRows {
		r := firstDataRow + i
		for j, c := range cols {
			v, ok := row[c.Key]
			if !ok || v == nil {
				continue
			}
			if err := f.SetCellValue(sheet, addr.Cell(j+1, r), v); err != nil {
				return nil, err
			}
		}
	}

	// With zero example rows one blank data row is reserved so totals
	// formulas always cover a real range instead of referencing themselves.
	dataRows := len(ws.ExampleRows)
	if dataRows == 0 {
		dataRows = 1
	}
	lastDataRow := headerRow + dataRows

	numericCols := make([]int, 0, len(cols))
	for i, c := range cols {
		if c.IsNumeric() && i+1 != rowTotalCol {
			numericCols = append(numericCols, i+1)
		}
	}

	if rowTotalCol > 0 {
		for r := firstDataRow; r <= lastDataRow; r++ {
			formula := safeFormula(addr.SumCells(numericCols, r))
			if err := f.SetCellFormula(sheet, addr.Cell(rowTotalCol, r), formula); err != nil {
				return nil, err
			}
		}
	}

	totalRow := 0
	if ws.Totals.ColTotals {
		totalRow = lastDataRow + 1
		if err := f.SetCellValue(sheet, addr.Cell(1, totalRow), ws.Totals.TotalLabel); err != nil {
			return nil, err
		}
		for i, c := range cols {
			if !c.IsNumeric() {
				continue
			}
			formula := safeFormula(addr.SumRange(i+1, firstDataRow, lastDataRow))
			if err := f.SetCellFormula(sheet, addr.Cell(i+1, totalRow), formula); err != nil {
				return nil, err
			}
		}
	}

	if err := addValidations(f, sheet, cols, rowTotalCol, lastDataRow); err != nil {
		return nil, err
	}

	if err := styleDataSheet(f, sheet, cols, st, lastDataRow, totalRow); err != nil {
		return nil, err
	}

	// The grand total lives where the totals row crosses the row-total column.
	if ws.Totals.GrandTotal && rowTotalCol > 0 && totalRow > 0 {
		if err := st.set(sheet, addr.Cell(rowTotalCol, totalRow), styleKey{accent: true, numFmt: numFmtByType[models.TypeCurrency]}); err != nil {
			return nil, err
		}
	}

	lastCol := len(cols)
	if err := f.AutoFilter(sheet, addr.Range(1, headerRow, lastCol, headerRow), nil); err != nil {
		return nil, err
	}
	if err := freezeHeader(f, sheet, headerRow); err != nil {
		return nil, err
	}

	return &DataSheetInfo{
		Name:        sheet,
		Columns:     cols,
		LastDataRow: lastDataRow,
		TotalRow:    totalRow,
		RowTotalCol: rowTotalCol,
	}, nil
}

func styleDataSheet(f *excelize.File, sheet string, cols []models.Column, st *stylist, lastDataRow, totalRow int) error {
	for i := range cols {
		if err := st.set(sheet, addr.Cell(i+1, headerRow), styleKey{header: true}); err != nil {
			return err
		}
	}

	for r := firstDataRow; r <= lastDataRow; r++ {
		zebra := r%2 == 0
		for i, c := range cols {
			k := styleKey{numFmt: numFmtByType[c.Type], zebra: zebra}
			if err := st.set(sheet, addr.Cell(i+1, r), k); err != nil {
				return err
			}
		}
	}

	if totalRow > 0 {
		for i, c := range cols {
			k := styleKey{bold: true}
			if c.IsNumeric() {
				k.numFmt = numFmtByType[c.Type]
			}
			if err := st.set(sheet, addr.Cell(i+1, totalRow), k); err != nil {
				return err
			}
		}
	}
	return nil
}

// Canonical dropdowns applied when the spec does not bring its own
// validation for well-known columns.
var (
	paymentListValues = []string{"Efectivo", "Transferencia", "Depósito", "Tarjeta Débito", "Tarjeta Crédito"}
	statusListValues  = []string{"Pendiente", "Pagado", "Vencido", "Parcial"}
)

func addValidations(f *excelize.File, sheet string, cols []models.Column, rowTotalCol, lastDataRow int) error {
	end := lastDataRow + validationSlack
	if end < validationSlack {
		end = validationSlack
	}

	for i, c := range cols {
		if i+1 == rowTotalCol {
			continue // computed column, never validated
		}
		v := c.Validation
		if v == nil {
			v = defaultValidationFor(c.Key)
		}
		if v == nil {
			continue
		}

		dv := excelize.NewDataValidation(true)
		dv.Sqref = addr.Range(i+1, firstDataRow, i+1, end)

		switch strings.ToLower(v.Type) {
		case "list":
			if len(v.Values) == 0 {
				continue
			}
			if err := dv.SetDropList(v.Values); err != nil {
				return err
			}
			dv.SetError(excelize.DataValidationErrorStyleStop, "Valor inválido", "Selecciona un valor de la lista.")
		case "number":
			lo, hi := 0.0, 999999999.0
			if v.Min != nil {
				lo = *v.Min
			}
			if v.Max != nil {
				hi = *v.Max
			}
			if err := dv.SetRange(lo, hi, excelize.DataValidationTypeDecimal, excelize.DataValidationOperatorBetween); err != nil {
				return err
			}
			dv.SetError(excelize.DataValidationErrorStyleStop, "Número inválido", "Ingresa un número dentro del rango permitido.")
		case "date":
			dv.Type = "date"
			dv.Operator = "between"
			dv.Formula1 = "DATE(2000,1,1)"
			dv.Formula2 = "DATE(2100,12,31)"
			dv.SetError(excelize.DataValidationErrorStyleStop, "Fecha inválida", "Ingresa una fecha válida.")
		default:
			continue
		}

		if err := f.AddDataValidation(sheet, dv); err != nil {
			return err
		}
	}
	return nil
}

func defaultValidationFor(key string) *models.Validation {
	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "pago") || k == "payment_method" || k == "payment":
		return &models.Validation{Type: "list", Values: paymentListValues}
	case k == "estatus":
		return &models.Validation{Type: "list", Values: statusListValues}
	}
	return nil
}

func freezeHeader(f *excelize.File, sheet string, rows int) error {
	top := addr.Cell(1, rows+1)
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      rows,
		TopLeftCell: top,
		ActivePane:  "bottomLeft",
		Selection: []excelize.Selection{
			{SQRef: top, ActiveCell: top, Pane: "bottomLeft"},
		},
	})
}

// safeFormula wraps a formula in IFERROR so a delivered workbook never shows
// #NUM!/#DIV0! out of the box. Already-wrapped formulas pass through.
func safeFormula(formula string) string {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(formula), "="))
	if s == "" {
		return s
	}
	if strings.HasPrefix(strings.ToUpper(s), "IFERROR(") {
		return s
	}
	return fmt.Sprintf("IFERROR(%s,0)", s)
}
