package builder

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aurea33/forge-go/pkg/forge/addr"
	"github.com/aurea33/forge-go/pkg/forge/chartimg"
	"github.com/aurea33/forge-go/pkg/forge/models"
)

// ErrAssetDecode indicates a malformed embedded image payload. It is always
// recovered locally: the asset is skipped and generation proceeds.
var ErrAssetDecode = errors.New("asset decode failed")

const (
	dashboardTitle = "AUREA 33 · Dashboard"

	maxKPICards    = 4
	kpiLabelRow    = 3
	kpiValueRow    = 4
	summaryRow     = 6
	totalMainRow   = 8
	rowCountRow    = 9
	chartAnchorRow = 12

	maxChartPoints = 8

	placeholderValue = "—"
	chartWarning     = "⚠ Gráfica no disponible"
)

var kpiNumFmts = map[string]string{
	"currency": `"$"#,##0.00;[Red]-"$"#,##0.00`,
	"percent":  "0.00%",
	"number":   "#,##0.00",
}

// buildDashboard renders the dashboard sheet: title banner, up to four KPI
// cards, the summary skeleton, the cross-sheet "Total principal" cell and the
// optional logo and rasterized chart. Chart and logo failures never abort the
// sheet.
func buildDashboard(ctx context.Context, f *excelize.File, ws *models.WorkbookSpec, info *DataSheetInfo, st *stylist, opts BuildOptions) error {
	sheet := ws.SheetNameDashboard
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for i, w := range []float64{18, 34, 18, 18} {
		l := addr.ColumnLetter(i + 1)
		if err := f.SetColWidth(sheet, l, l, w); err != nil {
			return err
		}
	}

	if err := f.MergeCell(sheet, "A1", "D1"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A1", dashboardTitle); err != nil {
		return err
	}
	if err := st.set(sheet, "A1", styleKey{title: true}); err != nil {
		return err
	}
	if err := f.SetRowHeight(sheet, 1, 28); err != nil {
		return err
	}

	if opts.LogoDataURL != "" {
		if err := embedLogo(f, sheet, opts.LogoDataURL); err != nil {
			opts.log(ctx, "logo skipped", "err", err)
		}
	}

	if err := writeKPICards(f, sheet, ws, info, st); err != nil {
		return err
	}
	if err := writeSummary(f, sheet, ws, info, st); err != nil {
		return err
	}

	if opts.WantCharts || ws.ChartPlan.Enabled {
		if err := embedChart(ctx, f, sheet, ws, info, opts); err != nil {
			// Failure isolation: the dashboard ships with a warning cell
			// instead of the image.
			opts.log(ctx, "chart fallback", "err", err)
			warnCell := addr.Cell(1, chartAnchorRow)
			if err := f.SetCellValue(sheet, warnCell, chartWarning); err != nil {
				return err
			}
			if err := st.set(sheet, warnCell, styleKey{warn: true}); err != nil {
				return err
			}
		}
	}

	return styleDashboardGrid(f, sheet, st)
}

func writeKPICards(f *excelize.File, sheet string, ws *models.WorkbookSpec, info *DataSheetInfo, st *stylist) error {
	kpis := ws.KPIs
	if len(kpis) == 0 {
		kpis = fallbackKPIs(info)
	}
	if len(kpis) > maxKPICards {
		kpis = kpis[:maxKPICards] // silently truncated, not an error
	}

	for i, k := range kpis {
		col := i + 1
		labelCell := addr.Cell(col, kpiLabelRow)
		valueCell := addr.Cell(col, kpiValueRow)

		if err := f.SetCellValue(sheet, labelCell, k.Label); err != nil {
			return err
		}
		if err := st.set(sheet, labelCell, styleKey{header: true}); err != nil {
			return err
		}

		formula := safeFormula(k.Formula)
		if formula == "" {
			if err := f.SetCellValue(sheet, valueCell, placeholderValue); err != nil {
				return err
			}
		} else if err := f.SetCellFormula(sheet, valueCell, formula); err != nil {
			return err
		}
		if err := st.set(sheet, valueCell, styleKey{accent: true, numFmt: kpiNumFmts[k.Format]}); err != nil {
			return err
		}
	}
	return nil
}

// fallbackKPIs synthesizes cards when the spec carries none: a row count and,
// when a currency column exists, its column sum.
func fallbackKPIs(info *DataSheetInfo) []models.KPI {
	kpis := []models.KPI{
		{
			Label:   "Filas registradas",
			Formula: fmt.Sprintf("COUNTA(%s)-1", addr.SheetColumn(info.Name, 1)),
			Format:  "number",
		},
	}
	for i, c := range info.Columns {
		if c.Type == models.TypeCurrency && i+1 != info.RowTotalCol {
			kpis = append(kpis, models.KPI{
				Label:   "Total " + c.Header,
				Formula: fmt.Sprintf("SUM(%s)", addr.SheetColumn(info.Name, i+1)),
				Format:  "currency",
			})
			break
		}
	}
	return kpis
}

func writeSummary(f *excelize.File, sheet string, ws *models.WorkbookSpec, info *DataSheetInfo, st *stylist) error {
	title := "Resumen"
	if ws.Summary != nil && ws.Summary.Title != "" {
		title = ws.Summary.Title
	}

	if err := f.MergeCell(sheet, addr.Cell(1, summaryRow), addr.Cell(2, summaryRow)); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, addr.Cell(1, summaryRow), title); err != nil {
		return err
	}
	if err := st.set(sheet, addr.Cell(1, summaryRow), styleKey{header: true}); err != nil {
		return err
	}

	for col, label := range []string{"Métrica", "Valor"} {
		cell := addr.Cell(col+1, summaryRow+1)
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return err
		}
		if err := st.set(sheet, cell, styleKey{header: true}); err != nil {
			return err
		}
	}

	// Total principal: cross-sheet reference to the data sheet's totals row
	// when it exists, a literal placeholder otherwise. Never a formula
	// pointing at a nonexistent row.
	if err := f.SetCellValue(sheet, addr.Cell(1, totalMainRow), "Total principal"); err != nil {
		return err
	}
	valueCell := addr.Cell(2, totalMainRow)
	mainCol, found := firstMainColumn(info)
	if found && info.TotalRow > 0 {
		formula := safeFormula(addr.SheetCell(info.Name, mainCol, info.TotalRow))
		if err := f.SetCellFormula(sheet, valueCell, formula); err != nil {
			return err
		}
		if err := st.set(sheet, valueCell, styleKey{bold: true, numFmt: kpiNumFmts["currency"]}); err != nil {
			return err
		}
	} else {
		if err := f.SetCellValue(sheet, valueCell, placeholderValue); err != nil {
			return err
		}
	}

	if err := f.SetCellValue(sheet, addr.Cell(1, rowCountRow), "Filas registradas"); err != nil {
		return err
	}
	countFormula := safeFormula(fmt.Sprintf("COUNTA(%s)-1", addr.SheetColumn(info.Name, 1)))
	return f.SetCellFormula(sheet, addr.Cell(2, rowCountRow), countFormula)
}

// firstMainColumn locates the first currency or number column of the
// original spec columns (the synthesized row-total column is excluded).
func firstMainColumn(info *DataSheetInfo) (int, bool) {
	for i, c := range info.Columns {
		if i+1 == info.RowTotalCol {
			continue
		}
		if c.Type == models.TypeCurrency || c.Type == models.TypeNumber {
			return i + 1, true
		}
	}
	return 0, false
}

var dataURLRe = regexp.MustCompile(`^data:image/(\w+);base64,(.+)$`)

func embedLogo(f *excelize.File, sheet, dataURL string) error {
	m := dataURLRe.FindStringSubmatch(dataURL)
	if m == nil {
		return fmt.Errorf("%w: not an image data URL", ErrAssetDecode)
	}
	raw, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssetDecode, err)
	}
	ext := "." + strings.ToLower(m[1])
	switch ext {
	case ".png", ".jpeg", ".jpg", ".gif":
	default:
		return fmt.Errorf("%w: unsupported image type %s", ErrAssetDecode, ext)
	}
	return f.AddPictureFromBytes(sheet, "D1", &excelize.Picture{
		Extension: ext,
		File:      raw,
		Format: &excelize.GraphicOptions{
			AltText:         "logo",
			LockAspectRatio: true,
			OffsetX:         4,
			OffsetY:         4,
		},
	})
}

func embedChart(ctx context.Context, f *excelize.File, sheet string, ws *models.WorkbookSpec, info *DataSheetInfo, opts BuildOptions) error {
	if opts.ChartRenderer == nil {
		return errors.New("no chart renderer configured")
	}

	labels, values := chartSeries(ws, info)
	req := chartimg.Request{
		Type:   ws.ChartPlan.Type,
		Title:  ws.ChartPlan.Title,
		Labels: labels,
		Values: values,
	}
	if req.Type == "" {
		req.Type = "bar"
	}
	if req.Title == "" {
		req.Title = "Distribución"
	}

	img, err := opts.ChartRenderer.Render(ctx, req)
	if err != nil {
		return err
	}
	return f.AddPictureFromBytes(sheet, addr.Cell(1, chartAnchorRow), &excelize.Picture{
		Extension: ".png",
		File:      img,
		Format:    &excelize.GraphicOptions{AltText: req.Title},
	})
}

// chartSeries derives up to 8 label/value pairs from the example rows. The
// chart plan's xKey/yKey win when they name real columns; otherwise the first
// text column supplies labels and the first numeric/currency column values.
// Missing labels default to R{row}, missing values to 0.
func chartSeries(ws *models.WorkbookSpec, info *DataSheetInfo) ([]string, []float64) {
	labelCol := columnKey(ws.Columns, ws.ChartPlan.XKey)
	valueCol := columnKey(ws.Columns, ws.ChartPlan.YKey)
	for _, c := range ws.Columns {
		if labelCol == "" && c.Type == models.TypeText {
			labelCol = c.Key
		}
		if valueCol == "" && (c.Type == models.TypeCurrency || c.Type == models.TypeNumber) {
			valueCol = c.Key
		}
	}

	n := len(ws.ExampleRows)
	if n > maxChartPoints {
		n = maxChartPoints
	}

	labels := make([]string, 0, n)
	values := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		row := ws.ExampleRows[i]

		label := ""
		if labelCol != "" {
			if v, ok := row[labelCol]; ok && v != nil {
				label = fmt.Sprintf("%v", v)
			}
		}
		if label == "" {
			label = fmt.Sprintf("R%d", i+firstDataRow)
		}
		labels = append(labels, label)

		value := 0.0
		if valueCol != "" {
			if v, ok := row[valueCol]; ok {
				value = toFloat(v)
			}
		}
		values = append(values, value)
	}
	return labels, values
}

// columnKey echoes key back when a column with that key exists.
func columnKey(cols []models.Column, key string) string {
	for _, c := range cols {
		if key != "" && c.Key == key {
			return key
		}
	}
	return ""
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		s := strings.TrimSpace(strings.NewReplacer("MXN", "", "$", "", ",", "").Replace(x))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}

// styleDashboardGrid applies the shared border/zebra pass: every populated
// cell gets thin borders, even rows below the header band get the zebra fill.
func styleDashboardGrid(f *excelize.File, sheet string, st *stylist) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	for rowIdx, row := range rows {
		r := rowIdx + 1
		for colIdx, v := range row {
			if v == "" {
				continue
			}
			cell := addr.Cell(colIdx+1, r)
			// Styled cells (title, KPI cards, headers) already carry borders;
			// only bare cells need the grid treatment.
			if id, err := f.GetCellStyle(sheet, cell); err == nil && id != 0 {
				continue
			}
			k := styleKey{zebra: r > 2 && r%2 == 0}
			if err := st.set(sheet, cell, k); err != nil {
				return err
			}
		}
	}
	return nil
}
