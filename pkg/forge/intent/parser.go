// Package intent classifies free-text requests into a typed Intent using
// keyword/regex scoring. Parsing is pure and total: any input, including the
// empty string, yields a fully populated Intent.
package intent

import (
	"math"
	"regexp"
	"strings"

	"github.com/aurea33/forge-go/pkg/forge/models"
)

const (
	confidenceBase = 0.2
	confidenceCap  = 0.95
	signalWeight   = 0.1
)

// Default returns the documented default Intent. Callers get a fresh value
// on every call; slices are never shared.
func Default() models.Intent {
	return models.Intent{
		Domain: DomainGeneric,
		Period: PeriodOneTime,
		Layout: LayoutSimpleTable,
		Features: models.IntentFeatures{
			Categories: true,
			Charts:     []string{},
			KPIs:       []string{},
		},
		Columns:    []string{"date", "concept", "amount", "type", "notes"},
		Currency:   "MXN",
		Locale:     "es-MX",
		Confidence: confidenceBase,
		Notes:      []string{},
	}
}

// Parse scores the input text against the keyword tables and returns the
// resulting Intent. Deterministic: identical input gives identical output.
func Parse(raw string) models.Intent {
	text := strings.TrimSpace(raw)
	it := Default()
	if text == "" {
		return it
	}

	totalSignals := 0
	strongSignals := 0

	if best, score := pickBest(domainCandidates, text); score > 0 {
		it.Domain = best
		totalSignals += score
		if score >= 2 {
			strongSignals++
		}
	}

	if best, score := pickBest(periodCandidates, text); score > 0 {
		it.Period = best
		totalSignals += score
	}

	if best, score := pickBest(layoutCandidates, text); score > 0 {
		it.Layout = best
		totalSignals += score
		if best == LayoutDashboard {
			strongSignals++
		}
	}

	// Payment methods: one strong signal no matter how many methods matched.
	methods := matchAll(paymentMethodCandidates, text)
	if len(methods) > 0 {
		it.Features.PaymentMethods = true
		totalSignals += len(methods)
		strongSignals++
	}

	if matchesAny(commissionPatterns, text) {
		it.Features.Commissions = true
		totalSignals++
	}

	if matchesAny(taxPatterns, text) {
		it.Features.Taxes = true
		totalSignals++
	}

	charts := matchAll(chartCandidates, text)
	if len(charts) > 0 {
		it.Features.Charts = charts
		totalSignals += len(charts)
	}

	if it.Layout == LayoutDashboard {
		kpis := []string{"total_income", "total_expense", "net"}
		if it.Features.PaymentMethods {
			kpis = append(kpis, "by_payment_method")
		}
		it.Features.KPIs = kpis
	}

	cols := []string{"date", "concept", "amount", "type"}
	if it.Features.PaymentMethods {
		cols = append(cols, "payment_method")
	}
	cols = append(cols, "notes")
	it.Columns = uniq(cols)

	conf := math.Min(confidenceCap, confidenceBase+signalWeight*float64(totalSignals)+signalWeight*float64(strongSignals))
	it.Confidence = math.Round(conf*100) / 100

	if it.Features.PaymentMethods && !it.Features.Commissions {
		it.Notes = append(it.Notes, "Se detectaron métodos de pago; considera activar comisiones si hay tarjeta.")
	}
	if it.Layout == LayoutDashboard && len(it.Features.Charts) == 0 {
		it.Notes = append(it.Notes, "Dashboard detectado sin tipo de gráficas; se aplicarán barras por defecto.")
		it.Features.Charts = []string{"bar"}
	}

	return it
}

// pickBest returns the candidate with the highest hit count. Ties keep the
// first-declared candidate; zero hits return an empty key.
func pickBest(candidates []candidate, text string) (string, int) {
	best := ""
	score := 0
	for _, c := range candidates {
		hits := 0
		for _, p := range c.patterns {
			if p.MatchString(text) {
				hits++
			}
		}
		if hits > score {
			score = hits
			best = c.key
		}
	}
	return best, score
}

// matchAll returns the keys of every candidate with at least one hit, in
// declaration order, deduplicated.
func matchAll(candidates []candidate, text string) []string {
	var out []string
	for _, c := range candidates {
		if matchesAny(c.patterns, text) {
			out = append(out, c.key)
		}
	}
	return uniq(out)
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func uniq(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
