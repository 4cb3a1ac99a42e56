package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaStatements creates the payment_items table and its lookup indexes.
// Statements are individually executable so both pgx and database/sql callers
// (the seeder) can apply them.
func SchemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS payment_items (
			id BIGSERIAL PRIMARY KEY,
			external_id TEXT,
			provider_first_name TEXT NOT NULL,
			provider_last_name TEXT NOT NULL,
			specialty TEXT,
			city TEXT,
			state TEXT,
			organization TEXT,
			amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			item_count INTEGER NOT NULL DEFAULT 0,
			program_year INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_items_external_id
			ON payment_items (external_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_items_name
			ON payment_items (LOWER(provider_last_name), LOWER(provider_first_name))`,
	}
}

// Migrate applies the schema when absent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range SchemaStatements() {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply payments schema: %w", err)
		}
	}
	return nil
}
