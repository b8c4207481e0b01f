// Package forge orchestrates workbook generation: request validation, spec
// acquisition, normalization and rendering. Each call is stateless
// end-to-end; nothing survives past a single request/response cycle.
package forge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aurea33/forge-go/pkg/forge/builder"
	"github.com/aurea33/forge-go/pkg/forge/models"
	"github.com/aurea33/forge-go/pkg/forge/spec"
	"github.com/aurea33/forge-go/pkg/forge/theme"
)

// SpecProducer obtains raw workbook spec JSON from the external language
// model. Implemented by openai.Client.
type SpecProducer interface {
	BuildSpec(ctx context.Context, req models.GenerateRequest) ([]byte, error)
}

// Deps are the injected collaborators of a generation. Zero-value Deps work
// for requests that carry their own spec and want no charts.
type Deps struct {
	SpecProducer  SpecProducer
	ChartRenderer builder.ChartRenderer
	Logger        *slog.Logger
}

// Result is the outcome of one generation.
type Result struct {
	FileName string
	Data     []byte               // xlsx bytes; nil in spec-only mode
	Spec     *models.WorkbookSpec // the normalized spec that was rendered
	SpecOnly bool
}

// Generate runs one request end to end. Validation failures surface before
// any sheet construction; chart/logo problems are recovered inside the
// builder; everything else is fatal.
func Generate(ctx context.Context, req models.GenerateRequest, deps Deps) (*Result, error) {
	if len(req.Spec) == 0 && strings.TrimSpace(req.Prompt) == "" && req.Wizard == nil {
		return nil, ErrInvalidRequest
	}

	themeKey := theme.Resolve(req.Preferences.Theme)
	pal := theme.PaletteFor(themeKey)

	raw := []byte(req.Spec)
	if len(raw) == 0 {
		if deps.SpecProducer == nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, ErrNoSpecProducer)
		}
		var err error
		raw, err = deps.SpecProducer.BuildSpec(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	ws, err := spec.Parse(raw)
	if err != nil {
		return nil, err
	}
	applyContext(ws, req.Context)
	if req.File != nil && req.File.SheetName != "" && req.File.SheetName != ws.SheetNameDashboard {
		ws.SheetNameData = req.File.SheetName
	}

	if deps.Logger != nil {
		deps.Logger.InfoContext(ctx, "spec accepted",
			"theme", string(themeKey),
			"columns", len(ws.Columns),
			"rows", len(ws.ExampleRows),
			"kpis", len(ws.KPIs),
		)
	}

	fileName := DefaultFileName
	if req.File != nil {
		fileName = SanitizeFileName(req.File.FileName)
	}

	if strings.EqualFold(req.Mode, "spec") {
		return &Result{FileName: fileName, Spec: ws, SpecOnly: true}, nil
	}

	data, err := builder.Build(ctx, ws, builder.BuildOptions{
		Palette:       pal,
		WantCharts:    req.Preferences.WantCharts,
		LogoDataURL:   req.LogoDataURL,
		ChartRenderer: deps.ChartRenderer,
		Logger:        deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Result{FileName: fileName, Data: data, Spec: ws}, nil
}

// applyContext folds the loosely-typed wizard context into the spec. The
// totals hint ("Sí, por fila y por columna") decides which totals get
// synthesized; a dashboard hint enables the chart plan.
func applyContext(ws *models.WorkbookSpec, ctxMap map[string]any) {
	if len(ctxMap) == 0 {
		return
	}

	totals := strings.ToLower(contextString(ctxMap, "totals_auto", "totals"))
	if totals != "" {
		if strings.Contains(totals, "fila") {
			ws.Totals.RowTotals = true
		}
		if strings.Contains(totals, "column") {
			ws.Totals.ColTotals = true
		}
		if !ws.Totals.RowTotals && !ws.Totals.ColTotals && affirmative(totals) {
			ws.Totals.ColTotals = true
		}
	}

	dash := strings.ToLower(contextString(ctxMap, "dashboard"))
	if affirmative(dash) {
		ws.ChartPlan.Enabled = true
		if ws.ChartPlan.Type == "" {
			ws.ChartPlan.Type = "bar"
		}
	}
}

func contextString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func affirmative(s string) bool {
	switch strings.TrimSpace(s) {
	case "sí", "si", "yes", "true", "1":
		return true
	}
	return strings.HasPrefix(s, "sí,") || strings.HasPrefix(s, "si,")
}
