// Command seed fills the payment_items table with disclosure rows for local
// development: the known fixture physicians plus any number of generated
// ones. Safe to re-run; it only ever inserts.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS payment_items (
	id BIGSERIAL PRIMARY KEY,
	external_id TEXT,
	provider_first_name TEXT NOT NULL,
	provider_last_name TEXT NOT NULL,
	specialty TEXT,
	city TEXT,
	state TEXT,
	organization TEXT,
	amount NUMERIC(12,2) NOT NULL,
	item_count INTEGER NOT NULL DEFAULT 1,
	program_year INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS payment_items_name_idx
	ON payment_items (LOWER(provider_last_name), LOWER(provider_first_name));
CREATE INDEX IF NOT EXISTS payment_items_external_id_idx
	ON payment_items (external_id);
`

const insertRow = `
INSERT INTO payment_items
	(external_id, provider_first_name, provider_last_name, specialty, city, state, organization, amount, item_count, program_year)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

var specialties = []string{
	"Neurological Surgery",
	"Neurology",
	"Interventional Radiology",
	"Family Medicine",
	"Internal Medicine",
	"Orthopaedic Surgery",
	"Cardiovascular Disease",
}

var organizations = []string{
	"Penumbra Inc",
	"J&J/Cerenovus",
	"Stryker Corp",
	"Medtronic Inc",
	"MicroVention Inc",
	"Pfizer Inc",
	"Boston Scientific Corp",
}

type row struct {
	externalID string
	first      string
	last       string
	specialty  string
	city       string
	state      string
	org        string
	amount     float64
	count      int
	year       int
}

func main() {
	var (
		rows    int
		seed    int64
		fixture bool
	)
	flag.IntVar(&rows, "rows", 500, "number of generated disclosure rows")
	flag.Int64Var(&seed, "seed", 0, "faker seed; 0 picks a random one")
	flag.BoolVar(&fixture, "fixture", true, "also insert the known fixture physicians")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	gofakeit.Seed(seed)

	var toInsert []row
	if fixture {
		toInsert = append(toInsert, fixtureRows()...)
	}
	for i := 0; i < rows; i++ {
		toInsert = append(toInsert, generatedRow())
	}

	inserted, err := insertAll(ctx, db, toInsert)
	if err != nil {
		log.Error("insert rows", "error", err, "inserted", inserted)
		os.Exit(1)
	}
	log.Info("seeded payment_items", "rows", inserted, "fixture", fixture)
}

func insertAll(ctx context.Context, db *sql.DB, rows []row) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, insertRow)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.externalID, r.first, r.last, r.specialty, r.city, r.state,
			r.org, r.amount, r.count, r.year,
		)
		if err != nil {
			return i, fmt.Errorf("row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// generatedRow fabricates one plausible disclosure. Amounts are rounded to
// cents so they survive the NUMERIC(12,2) column unchanged.
func generatedRow() row {
	org := organizations[gofakeit.Number(0, len(organizations)-1)]
	if gofakeit.Bool() {
		org = gofakeit.Company()
	}
	return row{
		externalID: gofakeit.DigitN(10),
		first:      gofakeit.FirstName(),
		last:       gofakeit.LastName(),
		specialty:  specialties[gofakeit.Number(0, len(specialties)-1)],
		city:       gofakeit.City(),
		state:      gofakeit.StateAbr(),
		org:        org,
		amount:     math.Round(gofakeit.Float64Range(10, 15000)*100) / 100,
		count:      gofakeit.Number(1, 12),
		year:       gofakeit.Number(2019, 2023),
	}
}

// fixtureRows mirrors the in-memory development fixture served when the
// API runs without a database, so both modes answer the same queries.
func fixtureRows() []row {
	return []row{
		{"1396882474", "EVAN", "JOYCE", "Neurological Surgery", "BOISE", "ID", "Penumbra Inc", 1250.50, 4, 2023},
		{"1396882474", "EVAN", "JOYCE", "Neurological Surgery", "BOISE", "ID", "J&J/Cerenovus", 310.00, 2, 2023},
		{"1396882474", "EVAN", "JOYCE", "Neurological Surgery", "SALT LAKE CITY", "UT", "Stryker Corp", 89.27, 1, 2022},
		{"1740283055", "MARGARET", "JOYCE", "Family Medicine", "TAMPA", "FL", "Pfizer Inc", 45.00, 1, 2023},
	}
}
