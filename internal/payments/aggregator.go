package payments

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/upstream"
)

// Store supplies raw payment line items from the disclosure dataset.
type Store interface {
	LineItemsByIdentifier(ctx context.Context, externalID string) ([]LineItem, error)
	LineItemsByName(ctx context.Context, first, last string) ([]LineItem, error)
}

// fallbackOrganization groups rows whose counterparty name is blank.
const fallbackOrganization = "Other"

// Aggregator groups line items by counterparty organization and keeps the
// designated organization's total separate from the competitor total.
type Aggregator struct {
	store         Store
	designatedOrg string
	logger        *slog.Logger
}

func NewAggregator(store Store, designatedOrg string, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		store:         store,
		designatedOrg: designatedOrg,
		logger:        logger,
	}
}

// Aggregate queries line items for ref and returns their summary. Store
// failures degrade to Found=false with a diagnostic; zero matching rows is a
// normal empty result.
func (a *Aggregator) Aggregate(ctx context.Context, ref QueryRef) Summary {
	items, err := a.query(ctx, ref)
	if err != nil {
		a.logger.WarnContext(ctx, "payments query failed",
			"error", err,
			"external_id", ref.ExternalID,
			"last_name", ref.Last,
		)
		return Summary{Diagnostic: upstream.Diagnostic(err)}
	}
	if len(items) == 0 {
		return Summary{}
	}

	summary := summarize(items, a.designatedOrg)
	summary.Found = true
	return summary
}

// An external identifier is precise and used exclusively when present. The
// name match accepts the risk of cross-identity contamination; it exists so a
// dossier can still show disclosures when no identifier was resolved.
func (a *Aggregator) query(ctx context.Context, ref QueryRef) ([]LineItem, error) {
	if ref.ExternalID != "" {
		return a.store.LineItemsByIdentifier(ctx, ref.ExternalID)
	}
	return a.store.LineItemsByName(ctx, ref.First, ref.Last)
}

// summarize is pure: group by organization, sum amount and count across years,
// order competitors by descending total with the designated organization last
// regardless of its amount. Ties keep first-seen order.
func summarize(items []LineItem, designatedOrg string) Summary {
	index := make(map[string]int, len(items))
	totals := make([]CounterpartyTotal, 0, len(items))

	for _, item := range items {
		org := strings.TrimSpace(item.Organization)
		if org == "" {
			org = fallbackOrganization
		}
		i, ok := index[org]
		if !ok {
			i = len(totals)
			index[org] = i
			totals = append(totals, CounterpartyTotal{
				Organization: org,
				Designated:   org == designatedOrg,
			})
		}
		totals[i].TotalAmount = totals[i].TotalAmount.Add(item.Amount)
		totals[i].TotalCount += item.Count
	}

	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Designated != totals[j].Designated {
			return totals[j].Designated
		}
		return totals[i].TotalAmount.GreaterThan(totals[j].TotalAmount)
	})

	summary := Summary{Counterparties: totals}
	for _, total := range totals {
		if total.Designated {
			summary.DesignatedTotal = summary.DesignatedTotal.Add(total.TotalAmount)
		} else {
			summary.CompetitorTotal = summary.CompetitorTotal.Add(total.TotalAmount)
		}
	}
	return summary
}
