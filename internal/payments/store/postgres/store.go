// Package postgres reads payment disclosures from the payment_items table.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/payments"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/upstream"
)

// Store queries disclosure rows in PostgreSQL. It serves both the aggregator
// (line items) and the identity resolver (direct-store provider lookup).
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// LineItemsByIdentifier returns per-organization, per-year sums for one
// external identifier.
func (s *Store) LineItemsByIdentifier(ctx context.Context, externalID string) ([]payments.LineItem, error) {
	query := `
		SELECT COALESCE(organization, '') AS organization,
		       SUM(amount) AS amount,
		       SUM(item_count) AS item_count,
		       program_year
		FROM payment_items
		WHERE external_id = $1
		GROUP BY organization, program_year
		ORDER BY program_year DESC, amount DESC
	`
	rows, err := s.pool.Query(ctx, query, externalID)
	if err != nil {
		return nil, upstream.Classify(upstream.SourcePayments, "line items by identifier", err)
	}
	return scanLineItems(rows)
}

// LineItemsByName matches first+last case-insensitively. Looser than the
// identifier query; used only when no identifier was resolved.
func (s *Store) LineItemsByName(ctx context.Context, first, last string) ([]payments.LineItem, error) {
	query := `
		SELECT COALESCE(organization, '') AS organization,
		       SUM(amount) AS amount,
		       SUM(item_count) AS item_count,
		       program_year
		FROM payment_items
		WHERE LOWER(provider_first_name) = LOWER($1)
		  AND LOWER(provider_last_name) = LOWER($2)
		GROUP BY organization, program_year
		ORDER BY program_year DESC, amount DESC
	`
	rows, err := s.pool.Query(ctx, query, first, last)
	if err != nil {
		return nil, upstream.Classify(upstream.SourcePayments, "line items by name", err)
	}
	return scanLineItems(rows)
}

// LatestProviderFor returns identity fields from the most recent matching row.
// found=false with a nil error means the name has no disclosure history.
func (s *Store) LatestProviderFor(ctx context.Context, first, last string) (identity.ProviderRecord, bool, error) {
	query := `
		SELECT COALESCE(external_id, ''),
		       provider_first_name,
		       provider_last_name,
		       COALESCE(specialty, ''),
		       COALESCE(city, ''),
		       COALESCE(state, '')
		FROM payment_items
		WHERE LOWER(provider_first_name) = LOWER($1)
		  AND LOWER(provider_last_name) = LOWER($2)
		ORDER BY program_year DESC, amount DESC
		LIMIT 1
	`
	var record identity.ProviderRecord
	err := s.pool.QueryRow(ctx, query, first, last).Scan(
		&record.ExternalID,
		&record.FirstName,
		&record.LastName,
		&record.Specialty,
		&record.City,
		&record.State,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return identity.ProviderRecord{}, false, nil
	}
	if err != nil {
		return identity.ProviderRecord{}, false, upstream.Classify(upstream.SourcePayments, "latest provider lookup", err)
	}
	return record, true, nil
}

// Health reports whether the store can serve queries.
func (s *Store) Health(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return upstream.Classify(upstream.SourcePayments, "ping", err)
	}
	return nil
}

func scanLineItems(rows pgx.Rows) ([]payments.LineItem, error) {
	defer rows.Close()

	var items []payments.LineItem
	for rows.Next() {
		var item payments.LineItem
		if err := rows.Scan(&item.Organization, &item.Amount, &item.Count, &item.ProgramYear); err != nil {
			return nil, upstream.New(upstream.SourcePayments, upstream.CategoryBadResponse, "scan line item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream.Classify(upstream.SourcePayments, "iterate line items", err)
	}
	return items, nil
}
