package models

// Intent is the structured classification of a free-text request into
// domain/period/layout/feature axes. It is produced locally by the intent
// parser and consumed by UI collaborators for live hinting.
type Intent struct {
	Domain     string         `json:"domain"`
	Period     string         `json:"period"`
	Layout     string         `json:"layout"`
	Features   IntentFeatures `json:"features"`
	Columns    []string       `json:"columns"`
	Currency   string         `json:"currency"`
	Locale     string         `json:"locale"`
	Confidence float64        `json:"confidence"`
	Notes      []string       `json:"notes"`
}

// IntentFeatures holds the feature flags detected alongside the main axes.
type IntentFeatures struct {
	PaymentMethods bool     `json:"payment_methods"`
	Commissions    bool     `json:"commissions"`
	Categories     bool     `json:"categories"`
	Budget         bool     `json:"budget"`
	Taxes          bool     `json:"taxes"`
	Charts         []string `json:"charts"`
	KPIs           []string `json:"kpis"`
}
