package openai

import (
	"encoding/json"
	"strings"

	"github.com/aurea33/forge-go/pkg/forge/models"
)

const contextClamp = 5000

// systemPrompt pins the model to the workbook spec contract. ES-MX on
// purpose: the product's users and the example content are Spanish.
const systemPrompt = `Eres un arquitecto experto en Excel.
Devuelve SOLO JSON válido (sin markdown).

Schema:
{
  "sheetNameData": "Data",
  "sheetNameDashboard": "Dashboard",
  "columns": [
    {"header": "Fecha", "key": "fecha", "type": "date|text|number|currency|percent", "width": 14,
     "validation": {"type": "list|number|date", "values": ["A"], "min": 0, "max": 999}}
  ],
  "exampleRows": [{"fecha": "2026-01-14"}],
  "totals": {"rowTotals": false, "colTotals": true, "grandTotal": false, "totalLabel": "TOTAL"},
  "kpis": [{"label": "Total", "formula": "SUM(Data!E:E)", "format": "currency"}],
  "summaryTable": {"title": "Resumen", "dimensions": [], "metrics": [], "notes": ""},
  "chartPlan": {"enabled": false, "type": "bar", "title": "", "xKey": "", "yKey": ""}
}

Reglas:
- columns mínimo 6, keys snake_case únicos.
- exampleRows mínimo 10.
- Si el nivel incluye "directivo": mínimo 4 KPIs.
- Fórmulas siempre envueltas en IFERROR(...,0).`

// buildUserPrompt assembles the deterministic Spanish prompt from the
// request. The free-form context dump is clamped so one request cannot blow
// the token budget.
func buildUserPrompt(req models.GenerateRequest) string {
	w := req.Wizard
	if w == nil {
		w = &models.Wizard{}
	}
	p := req.Preferences

	ctxDump := "{}"
	if len(req.Context) > 0 {
		if b, err := json.MarshalIndent(req.Context, "", "  "); err == nil {
			ctxDump = clamp(string(b), contextClamp)
		}
	}

	lines := []string{
		"Necesito diseñar un Excel profesional de última generación (nivel SaaS).",
		"",
		"Objetivo (texto del usuario): " + req.Prompt,
		"",
		"Perfil (Wizard):",
		"- Para qué: " + orDash(w.Purpose),
		"- Nivel: " + orDash(w.Level),
		"- Periodicidad: " + orDash(w.Periodicity),
		"- Giro: " + orDash(w.Industry),
		"",
		"Preferencias:",
		"- Tema: " + orDash(p.Theme),
		"- Gráficas: " + siNo(p.WantCharts),
		"- Imágenes: " + siNo(p.WantImages),
		"",
		"Contexto extra (si existe):",
		ctxDump,
		"",
		"Requisitos duros:",
		"- Devuelve SOLO JSON válido (sin markdown).",
		"- Data debe incluir columnas, tipos, ejemplo de filas (mínimo 10) y totales.",
		"- Incluye fórmulas sugeridas para totales y KPIs.",
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func siNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func clamp(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
