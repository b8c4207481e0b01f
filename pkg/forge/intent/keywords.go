package intent

import "regexp"

// Axis values produced by the parser.
const (
	DomainFinancePersonal = "finance_personal"
	DomainBusinessTPV     = "business_tpv"
	DomainHospital        = "hospital"
	DomainAgenda          = "agenda"
	DomainGeneric         = "generic"

	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAnnual  = "annual"
	PeriodOneTime = "one_time"

	LayoutSimpleTable = "simple_table"
	LayoutLedger      = "ledger"
	LayoutDashboard   = "dashboard"
	LayoutReport      = "report"
)

// candidate binds an axis value to its detection patterns. Candidates are
// declared in slices, not maps: ties in pickBest must resolve to the
// first-declared candidate, so iteration order is load-bearing.
type candidate struct {
	key      string
	patterns []*regexp.Regexp
}

func rx(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// Keyword vocabulary is ES-MX; the product's user base writes Spanish.
var domainCandidates = []candidate{
	{DomainFinancePersonal, rx(`finanzas personales`, `gastos`, `ingresos`, `ahorro`, `presupuesto`)},
	{DomainBusinessTPV, rx(`negocio`, `ventas`, `tpv`, `terminal`, `caja`, `cobros`)},
	{DomainHospital, rx(`hospital`, `cl[ií]nica`, `radiolog`, `unirad`, `paciente`)},
	{DomainAgenda, rx(`agenda`, `citas`, `calendario`, `horarios`)},
}

var periodCandidates = []candidate{
	{PeriodDaily, rx(`diari[oa]`, `cada d[ií]a`, `\bhoy\b`)},
	{PeriodWeekly, rx(`semanal`, `cada semana`)},
	{PeriodMonthly, rx(`mensual`, `cada mes`)},
	{PeriodAnnual, rx(`anual`, `cada a[nñ]o`)},
}

var layoutCandidates = []candidate{
	{LayoutDashboard, rx(`dashboard`, `tablero`, `kpi`, `tarjetas`, `resumen`)},
	{LayoutLedger, rx(`ledger`, `libro`, `movimientos`, `registro`, `contabil`)},
	{LayoutReport, rx(`reporte`, `informe`)},
}

var paymentMethodCandidates = []candidate{
	{"cash", rx(`efectivo`)},
	{"transfer", rx(`transfer`, `spei`)},
	{"debit", rx(`d[eé]bito`)},
	{"credit", rx(`cr[eé]dito`)},
	{"deposit", rx(`dep[oó]sito`)},
}

var chartCandidates = []candidate{
	{"bar", rx(`barra`, `barras`)},
	{"pie", rx(`pastel`, `pie`, `circular`)},
	{"line", rx(`l[ií]nea`, `tendencia`)},
}

var commissionPatterns = rx(`comisi[oó]n`, `tasa`, `%`)

var taxPatterns = rx(`iva`, `impuesto`, `factura`, `sat`)
