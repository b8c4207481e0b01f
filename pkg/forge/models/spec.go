package models

// Column types accepted by the workbook spec.
const (
	TypeDate     = "date"
	TypeText     = "text"
	TypeNumber   = "number"
	TypeCurrency = "currency"
	TypePercent  = "percent"
)

// Column describes one data-sheet column.
type Column struct {
	Header     string      `json:"header"`
	Key        string      `json:"key"`
	Type       string      `json:"type"`
	Width      float64     `json:"width,omitempty"`
	Validation *Validation `json:"validation,omitempty"`
}

// IsNumeric reports whether the column participates in totals.
func (c Column) IsNumeric() bool {
	switch c.Type {
	case TypeNumber, TypeCurrency, TypePercent:
		return true
	}
	return false
}

// Validation constrains cell input for a column.
type Validation struct {
	Type   string   `json:"type"` // "list", "number" or "date"
	Values []string `json:"values,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// Totals configures synthesized summary formulas on the data sheet.
type Totals struct {
	RowTotals  bool   `json:"rowTotals"`
	ColTotals  bool   `json:"colTotals"`
	GrandTotal bool   `json:"grandTotal"`
	TotalLabel string `json:"totalLabel"`
}

// KPI pairs a label with a live spreadsheet formula on the dashboard.
type KPI struct {
	Label   string `json:"label"`
	Formula string `json:"formula"`
	Format  string `json:"format"` // "currency", "percent", "number" or "text"
}

// SummaryTable is descriptive metadata for the dashboard summary section.
type SummaryTable struct {
	Title      string   `json:"title"`
	Dimensions []string `json:"dimensions,omitempty"`
	Metrics    []string `json:"metrics,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// ChartPlan describes the optional rasterized chart on the dashboard.
type ChartPlan struct {
	Enabled bool   `json:"enabled"`
	Type    string `json:"type"` // "bar", "line" or "pie"
	Title   string `json:"title"`
	XKey    string `json:"xKey"`
	YKey    string `json:"yKey"`
}

// WorkbookSpec is the validated, typed description of the workbook the
// builder renders. Instances come out of spec.Parse and are never consumed
// half-validated.
type WorkbookSpec struct {
	SheetNameData      string           `json:"sheetNameData"`
	SheetNameDashboard string           `json:"sheetNameDashboard"`
	Columns            []Column         `json:"columns"`
	ExampleRows        []map[string]any `json:"exampleRows"`
	Totals             Totals           `json:"totals"`
	KPIs               []KPI            `json:"kpis"`
	Summary            *SummaryTable    `json:"summaryTable,omitempty"`
	ChartPlan          ChartPlan        `json:"chartPlan"`
}
