// Package payments aggregates industry payment disclosures for a resolved
// provider identity. Line items are grouped by counterparty organization; one
// designated organization is always totaled and reported separately from the
// competitor field.
package payments

import "github.com/shopspring/decimal"

// LineItem is one raw disclosure row as returned by a store query. Amounts are
// decimal because disclosure sums are money; float drift across years is not
// acceptable in reported totals.
type LineItem struct {
	Organization string
	Amount       decimal.Decimal
	Count        int
	ProgramYear  int
}

// CounterpartyTotal is the aggregate for one organization across all program
// years and line items.
type CounterpartyTotal struct {
	Organization string          `json:"organization"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalCount   int             `json:"total_count"`
	Designated   bool            `json:"designated"`
}

// Summary is the structurally complete aggregation result. Found is false both
// when the store is unavailable (Diagnostic set) and when no rows match
// (Diagnostic empty); callers render partial dossiers either way.
type Summary struct {
	Found           bool                `json:"found"`
	Counterparties  []CounterpartyTotal `json:"counterparties,omitempty"`
	CompetitorTotal decimal.Decimal     `json:"competitor_total"`
	DesignatedTotal decimal.Decimal     `json:"designated_total"`
	Diagnostic      string              `json:"diagnostic,omitempty"`
}

// QueryRef selects which store query runs: an external identifier when the
// resolved identity carries one, otherwise a looser first+last name match.
type QueryRef struct {
	ExternalID string
	First      string
	Last       string
}
