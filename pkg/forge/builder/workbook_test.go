package builder

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aurea33/forge-go/pkg/forge/chartimg"
	"github.com/aurea33/forge-go/pkg/forge/models"
	"github.com/aurea33/forge-go/pkg/forge/spec"
	"github.com/aurea33/forge-go/pkg/forge/theme"
)

func testPalette() theme.Palette {
	return theme.PaletteFor(theme.KeyDarkGold)
}

// ledgerSpec mirrors the end-to-end scenario: 6 columns (1 date, 2 text
// before the money columns is close enough: date, text, currency, currency,
// text, text) and 10 example rows, with both totals requested.
func ledgerSpec(t *testing.T) *models.WorkbookSpec {
	t.Helper()
	ws := &models.WorkbookSpec{
		Columns: []models.Column{
			{Header: "Fecha", Key: "fecha", Type: "date", Width: 14},
			{Header: "Concepto", Key: "concepto", Type: "text", Width: 26},
			{Header: "Ingreso", Key: "ingreso", Type: "currency", Width: 14},
			{Header: "Egreso", Key: "egreso", Type: "currency", Width: 14},
			{Header: "Forma de pago", Key: "pago", Type: "text", Width: 16},
			{Header: "Notas", Key: "notas", Type: "text", Width: 20},
		},
		Totals: models.Totals{RowTotals: true, ColTotals: true},
	}
	for i := 0; i < 10; i++ {
		ws.ExampleRows = append(ws.ExampleRows, map[string]any{
			"fecha":    fmt.Sprintf("2026-01-%02d", i+1),
			"concepto": fmt.Sprintf("Mov %d", i+1),
			"ingreso":  float64(100 * (i + 1)),
			"egreso":   float64(10 * (i + 1)),
			"pago":     "Efectivo",
		})
	}
	require.NoError(t, spec.Normalize(ws))
	return ws
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestBuildEndToEnd(t *testing.T) {
	ws := ledgerSpec(t)
	data, err := Build(context.Background(), ws, BuildOptions{Palette: testPalette()})
	require.NoError(t, err)

	f := openWorkbook(t, data)

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Data")
	assert.Contains(t, sheets, "Dashboard")
	assert.Contains(t, sheets, specSheetName)

	// Headers, including the synthesized row-total column.
	for i, want := range []string{"Fecha", "Concepto", "Ingreso", "Egreso", "Forma de pago", "Notas", "Total fila"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		got, err := f.GetCellValue("Data", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, "header %s", cell)
	}

	// 10 data rows: row-total formulas sum exactly the two currency columns.
	for r := 2; r <= 11; r++ {
		formula, err := f.GetCellFormula("Data", fmt.Sprintf("G%d", r))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("IFERROR(SUM(C%d,D%d),0)", r, r), formula)
	}

	// Column totals land on row 12, excluding header and the totals row.
	label, err := f.GetCellValue("Data", "A12")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL", label)
	for _, col := range []string{"C", "D", "G"} {
		formula, err := f.GetCellFormula("Data", col+"12")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("IFERROR(SUM(%s2:%s11),0)", col, col), formula)
	}
	// Text columns never total.
	for _, col := range []string{"B", "E", "F"} {
		formula, err := f.GetCellFormula("Data", col+"12")
		require.NoError(t, err)
		assert.Empty(t, formula)
	}

	// Dashboard: merged title banner plus the cross-sheet total reference.
	title, err := f.GetCellValue("Dashboard", "A1")
	require.NoError(t, err)
	assert.Equal(t, dashboardTitle, title)

	merged, err := f.GetMergeCells("Dashboard")
	require.NoError(t, err)
	foundTitleMerge := false
	for _, m := range merged {
		if m.GetStartAxis() == "A1" && m.GetEndAxis() == "D1" {
			foundTitleMerge = true
		}
	}
	assert.True(t, foundTitleMerge, "title banner should span A1:D1")

	totalLabel, err := f.GetCellValue("Dashboard", "A8")
	require.NoError(t, err)
	assert.Equal(t, "Total principal", totalLabel)
	totalFormula, err := f.GetCellFormula("Dashboard", "B8")
	require.NoError(t, err)
	assert.Equal(t, "IFERROR(Data!C12,0)", totalFormula)

	// No spec KPIs: fallback cards, at most 4, never more.
	kpiLabel, err := f.GetCellValue("Dashboard", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Filas registradas", kpiLabel)
}

func TestBuildZeroExampleRows(t *testing.T) {
	ws := ledgerSpec(t)
	ws.ExampleRows = nil

	data, err := Build(context.Background(), ws, BuildOptions{Palette: testPalette()})
	require.NoError(t, err)
	f := openWorkbook(t, data)

	// One blank data row is reserved; totals land on row 3 and sum the
	// (empty) row 2 range instead of referencing themselves.
	formula, err := f.GetCellFormula("Data", "C3")
	require.NoError(t, err)
	assert.Equal(t, "IFERROR(SUM(C2:C2),0)", formula)

	label, err := f.GetCellValue("Data", "A3")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL", label)
}

func TestBuildWithoutTotals(t *testing.T) {
	ws := ledgerSpec(t)
	ws.Totals = models.Totals{TotalLabel: "TOTAL"}

	data, err := Build(context.Background(), ws, BuildOptions{Palette: testPalette()})
	require.NoError(t, err)
	f := openWorkbook(t, data)

	// No row-total column, no totals row.
	h, err := f.GetCellValue("Data", "G1")
	require.NoError(t, err)
	assert.Empty(t, h)
	v, err := f.GetCellValue("Data", "A12")
	require.NoError(t, err)
	assert.Empty(t, v)

	// Without a totals row the dashboard renders the placeholder, never a
	// formula into a nonexistent row.
	formula, err := f.GetCellFormula("Dashboard", "B8")
	require.NoError(t, err)
	assert.Empty(t, formula)
	placeholder, err := f.GetCellValue("Dashboard", "B8")
	require.NoError(t, err)
	assert.Equal(t, placeholderValue, placeholder)
}

func TestBuildKPITruncation(t *testing.T) {
	ws := ledgerSpec(t)
	for i := 1; i <= 6; i++ {
		ws.KPIs = append(ws.KPIs, models.KPI{
			Label:   fmt.Sprintf("KPI %d", i),
			Formula: "SUM(Data!C:C)",
			Format:  "currency",
		})
	}
	require.NoError(t, spec.Normalize(ws))

	data, err := Build(context.Background(), ws, BuildOptions{Palette: testPalette()})
	require.NoError(t, err)
	f := openWorkbook(t, data)

	for i := 1; i <= 4; i++ {
		cell, _ := excelize.CoordinatesToCellName(i, 3)
		v, err := f.GetCellValue("Dashboard", cell)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("KPI %d", i), v)

		valueCell, _ := excelize.CoordinatesToCellName(i, 4)
		formula, err := f.GetCellFormula("Dashboard", valueCell)
		require.NoError(t, err)
		assert.Equal(t, "IFERROR(SUM(Data!C:C),0)", formula)
	}
	// Card 5 silently truncated.
	v, err := f.GetCellValue("Dashboard", "E3")
	require.NoError(t, err)
	assert.Empty(t, v)
}

type failingRenderer struct{}

func (failingRenderer) Render(ctx context.Context, req chartimg.Request) ([]byte, error) {
	return nil, fmt.Errorf("%w: 502 Bad Gateway", chartimg.ErrRender)
}

type fakeRenderer struct {
	got chartimg.Request
}

// A 1x1 transparent PNG keeps excelize's image sniffing happy.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
	0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41, 0x54,
	0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00, 0x05, 0x00, 0x01,
	0x0d, 0x0a, 0x2d, 0xb4,
	0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func (r *fakeRenderer) Render(ctx context.Context, req chartimg.Request) ([]byte, error) {
	r.got = req
	return tinyPNG, nil
}

func TestBuildChartFailureIsolated(t *testing.T) {
	ws := ledgerSpec(t)

	data, err := Build(context.Background(), ws, BuildOptions{
		Palette:       testPalette(),
		WantCharts:    true,
		ChartRenderer: failingRenderer{},
	})
	require.NoError(t, err, "chart failure must never fail the generation")

	f := openWorkbook(t, data)
	warn, err := f.GetCellValue("Dashboard", "A12")
	require.NoError(t, err)
	assert.Equal(t, chartWarning, warn)
}

func TestBuildChartSeriesDerivation(t *testing.T) {
	ws := ledgerSpec(t)
	r := &fakeRenderer{}

	_, err := Build(context.Background(), ws, BuildOptions{
		Palette:       testPalette(),
		WantCharts:    true,
		ChartRenderer: r,
	})
	require.NoError(t, err)

	// First text column (Concepto) labels, first currency column (Ingreso)
	// values, capped at 8 of the 10 rows.
	require.Len(t, r.got.Labels, 8)
	require.Len(t, r.got.Values, 8)
	assert.Equal(t, "Mov 1", r.got.Labels[0])
	assert.Equal(t, 100.0, r.got.Values[0])
	assert.Equal(t, "bar", r.got.Type)
}

func TestBuildChartSeriesHonorsPlanKeys(t *testing.T) {
	ws := ledgerSpec(t)
	ws.ChartPlan = models.ChartPlan{Enabled: true, Type: "pie", XKey: "pago", YKey: "egreso"}
	r := &fakeRenderer{}

	_, err := Build(context.Background(), ws, BuildOptions{
		Palette:       testPalette(),
		ChartRenderer: r,
	})
	require.NoError(t, err)
	assert.Equal(t, "pie", r.got.Type)
	assert.Equal(t, "Efectivo", r.got.Labels[0])
	assert.Equal(t, 10.0, r.got.Values[0])
}

func TestBuildChartSeriesDefaults(t *testing.T) {
	ws := ledgerSpec(t)
	// Rows missing both label and value fall back to R{row} / 0.
	ws.ExampleRows = []map[string]any{{"fecha": "2026-01-01"}}
	r := &fakeRenderer{}

	_, err := Build(context.Background(), ws, BuildOptions{
		Palette:       testPalette(),
		WantCharts:    true,
		ChartRenderer: r,
	})
	require.NoError(t, err)
	require.Len(t, r.got.Labels, 1)
	assert.Equal(t, "R2", r.got.Labels[0])
	assert.Equal(t, 0.0, r.got.Values[0])
}

func TestBuildLogoMalformedIsSkipped(t *testing.T) {
	ws := ledgerSpec(t)

	data, err := Build(context.Background(), ws, BuildOptions{
		Palette:     testPalette(),
		LogoDataURL: "data:image/png;base64,NOT_BASE64!!!",
	})
	require.NoError(t, err, "malformed logo must not abort generation")
	openWorkbook(t, data)
}

func TestSafeFormula(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SUM(A2:A5)", "IFERROR(SUM(A2:A5),0)"},
		{"=SUM(A2:A5)", "IFERROR(SUM(A2:A5),0)"},
		{"IFERROR(SUM(A2),0)", "IFERROR(SUM(A2),0)"},
		{"=IFERROR(SUM(A2),0)", "IFERROR(SUM(A2),0)"},
		{"", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeFormula(tt.in), "input %q", tt.in)
	}
}
