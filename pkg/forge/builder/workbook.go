// Package builder renders a validated WorkbookSpec into a styled, multi-sheet
// xlsx document. One invocation owns one workbook; nothing is shared across
// calls.
package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/aurea33/forge-go/pkg/forge/chartimg"
	"github.com/aurea33/forge-go/pkg/forge/models"
	"github.com/aurea33/forge-go/pkg/forge/theme"
)

const (
	workbookCreator = "AUREA 33"
	specSheetName   = "__FORGE_SPEC"
)

// ChartRenderer rasterizes a chart description into an image. Implemented by
// chartimg.Client; swapped for fakes in tests.
type ChartRenderer interface {
	Render(ctx context.Context, req chartimg.Request) ([]byte, error)
}

// SerializationError wraps an unexpected failure while writing the binary
// document. Fatal to the request.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("workbook serialization failed: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// BuildOptions carries per-request collaborators and presentation choices.
type BuildOptions struct {
	Palette       theme.Palette
	WantCharts    bool
	LogoDataURL   string
	ChartRenderer ChartRenderer
	Logger        *slog.Logger
}

func (o BuildOptions) log(ctx context.Context, msg string, args ...any) {
	if o.Logger != nil {
		o.Logger.WarnContext(ctx, msg, args...)
	}
}

// Build renders the spec into xlsx bytes: data sheet, dashboard, hidden spec
// sheet, document properties. The spec must already be validated; Build does
// not re-run the structural gate.
func Build(ctx context.Context, ws *models.WorkbookSpec, opts BuildOptions) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the data sheet.
	if err := f.SetSheetName("Sheet1", ws.SheetNameData); err != nil {
		return nil, err
	}

	st := newStylist(f, opts.Palette)

	info, err := buildDataSheet(f, ws, st)
	if err != nil {
		return nil, err
	}

	if err := buildDashboard(ctx, f, ws, info, st, opts); err != nil {
		return nil, err
	}

	if err := addSpecSheet(f, ws); err != nil {
		return nil, err
	}

	if err := f.SetDocProps(&excelize.DocProperties{Creator: workbookCreator}); err != nil {
		return nil, err
	}
	fullCalc := true
	if err := f.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return buf.Bytes(), nil
}

// addSpecSheet stores the normalized spec JSON on a veryHidden sheet for
// debugging delivered files.
func addSpecSheet(f *excelize.File, ws *models.WorkbookSpec) error {
	if _, err := f.NewSheet(specSheetName); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return err
	}
	if err := f.SetCellValue(specSheetName, "A1", "FORGE_EXCEL_SPEC_JSON"); err != nil {
		return err
	}
	if err := f.SetCellValue(specSheetName, "A2", string(raw)); err != nil {
		return err
	}
	return f.SetSheetVisible(specSheetName, false, true)
}
