// Package spec ingests the AI-produced workbook description: it extracts JSON
// from sloppy model output, decodes it into a typed WorkbookSpec and validates
// the structural contract before any sheet construction begins.
package spec

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aurea33/forge-go/pkg/forge/models"
)

// ErrNoJSON indicates the raw model output contained no decodable JSON object.
var ErrNoJSON = errors.New("no JSON object in model output")

// ValidationError reports a structural violation of the spec contract.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid workbook spec: %s: %s", e.Field, e.Reason)
}

const (
	defaultDataSheet      = "Data"
	defaultDashboardSheet = "Dashboard"
	defaultTotalLabel     = "TOTAL"
	defaultColumnWidth    = 18

	// MinColumns is the hard acceptance gate; fewer columns is fatal.
	MinColumns = 4
)

var snakeCaseRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ExtractJSON returns the JSON object embedded in raw model output. It tries
// the whole payload first, then the first-{ .. last-} slice (models like to
// wrap JSON in prose or markdown fences).
func ExtractJSON(raw string) ([]byte, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, ErrNoJSON
	}
	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first >= 0 && last > first {
		chunk := s[first : last+1]
		if json.Valid([]byte(chunk)) {
			return []byte(chunk), nil
		}
	}
	return nil, ErrNoJSON
}

// Parse decodes raw JSON into a WorkbookSpec, fills documented defaults for
// missing optional fields and rejects structural violations. The returned
// spec is safe for the builder to consume without further checks.
func Parse(raw []byte) (*models.WorkbookSpec, error) {
	var ws models.WorkbookSpec
	if err := json.Unmarshal(raw, &ws); err != nil {
		return nil, &ValidationError{Field: "spec", Reason: "not a JSON workbook spec: " + err.Error()}
	}
	if err := Normalize(&ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// Normalize applies defaults and validates a decoded spec in place.
func Normalize(ws *models.WorkbookSpec) error {
	if ws.SheetNameData == "" {
		ws.SheetNameData = defaultDataSheet
	}
	if ws.SheetNameDashboard == "" {
		ws.SheetNameDashboard = defaultDashboardSheet
	}
	if ws.SheetNameData == ws.SheetNameDashboard {
		return &ValidationError{Field: "sheetNameDashboard", Reason: "data and dashboard sheets share a name"}
	}

	if len(ws.Columns) < MinColumns {
		return &ValidationError{
			Field:  "columns",
			Reason: fmt.Sprintf("need at least %d columns, got %d", MinColumns, len(ws.Columns)),
		}
	}

	seen := make(map[string]struct{}, len(ws.Columns))
	for i := range ws.Columns {
		c := &ws.Columns[i]
		c.Key = strings.TrimSpace(c.Key)
		if c.Key == "" {
			return &ValidationError{Field: fmt.Sprintf("columns[%d].key", i), Reason: "empty"}
		}
		if !snakeCaseRe.MatchString(c.Key) {
			return &ValidationError{Field: fmt.Sprintf("columns[%d].key", i), Reason: "must be snake_case"}
		}
		if _, dup := seen[c.Key]; dup {
			return &ValidationError{Field: fmt.Sprintf("columns[%d].key", i), Reason: "duplicate key " + c.Key}
		}
		seen[c.Key] = struct{}{}

		if c.Header == "" {
			c.Header = c.Key
		}
		if c.Width <= 0 {
			c.Width = defaultColumnWidth
		}

		typ, err := normalizeColumnType(c.Type)
		if err != nil {
			return &ValidationError{Field: fmt.Sprintf("columns[%d].type", i), Reason: err.Error()}
		}
		c.Type = typ
	}

	if ws.Totals.TotalLabel == "" {
		ws.Totals.TotalLabel = defaultTotalLabel
	}

	for i := range ws.KPIs {
		k := &ws.KPIs[i]
		if k.Label == "" {
			k.Label = fmt.Sprintf("KPI %d", i+1)
		}
		k.Format = normalizeKPIFormat(k.Format)
	}

	if ws.ChartPlan.Enabled {
		switch strings.ToLower(ws.ChartPlan.Type) {
		case "bar", "line", "pie":
			ws.ChartPlan.Type = strings.ToLower(ws.ChartPlan.Type)
		case "":
			ws.ChartPlan.Type = "bar"
		default:
			return &ValidationError{Field: "chartPlan.type", Reason: "unknown chart type " + ws.ChartPlan.Type}
		}
	}
	return nil
}

// ColumnIndexByKey returns the 1-based index of the column with the given
// key. A miss is explicit; callers decide how to fall back.
func ColumnIndexByKey(cols []models.Column, key string) (int, bool) {
	for i, c := range cols {
		if c.Key == key {
			return i + 1, true
		}
	}
	return 0, false
}

func normalizeColumnType(t string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case models.TypeDate:
		return models.TypeDate, nil
	case models.TypeText, "":
		return models.TypeText, nil
	case models.TypeNumber, "integer":
		return models.TypeNumber, nil
	case models.TypeCurrency:
		return models.TypeCurrency, nil
	case models.TypePercent:
		return models.TypePercent, nil
	default:
		return "", fmt.Errorf("unknown type %q", t)
	}
}

func normalizeKPIFormat(f string) string {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "currency":
		return "currency"
	case "percent":
		return "percent"
	case "number", "integer":
		return "number"
	default:
		return "text"
	}
}
