//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/payments/store/postgres"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.postgres.Pool))
	s.store = postgres.New(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "payment_items"))
}

func (s *PostgresStoreSuite) insert(externalID, first, last, specialty, city, state, org, amount string, count, year int) {
	s.T().Helper()
	_, err := s.postgres.Pool.Exec(context.Background(), `
		INSERT INTO payment_items
			(external_id, provider_first_name, provider_last_name, specialty, city, state, organization, amount, item_count, program_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, externalID, first, last, specialty, city, state, org, amount, count, year)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seedJoyce() {
	s.insert("1234567890", "Evan", "Joyce", "Neurological Surgery", "Boise", "ID", "Penumbra", "750.00", 2, 2023)
	s.insert("1234567890", "Evan", "Joyce", "Neurological Surgery", "Boise", "ID", "Penumbra", "250.00", 1, 2023)
	s.insert("1234567890", "Evan", "Joyce", "Neurological Surgery", "Boise", "ID", "J&J/Cerenovus", "1200.00", 4, 2024)
	s.insert("9999999999", "Dana", "Wu", "Cardiology", "Seattle", "WA", "Medtronic", "90.00", 1, 2024)
}

func (s *PostgresStoreSuite) TestLineItemsByIdentifierGroupsAndOrders() {
	s.seedJoyce()

	items, err := s.store.LineItemsByIdentifier(context.Background(), "1234567890")
	s.Require().NoError(err)
	s.Require().Len(items, 2)

	s.Equal("J&J/Cerenovus", items[0].Organization)
	s.Equal(2024, items[0].ProgramYear)
	s.Equal("Penumbra", items[1].Organization)
	s.True(items[1].Amount.Equal(items[1].Amount.Truncate(2)), "amounts round-trip as exact decimals")
	s.Equal("1000", items[1].Amount.Truncate(0).String(), "same-year rows for one organization are summed")
	s.Equal(3, items[1].Count)
}

func (s *PostgresStoreSuite) TestLineItemsByNameIsCaseInsensitive() {
	s.seedJoyce()

	items, err := s.store.LineItemsByName(context.Background(), "EVAN", "joyce")
	s.Require().NoError(err)
	s.Len(items, 2)
}

func (s *PostgresStoreSuite) TestLineItemsMissIsEmptyNotError() {
	items, err := s.store.LineItemsByName(context.Background(), "Nobody", "Here")
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *PostgresStoreSuite) TestLatestProviderForPicksNewestRow() {
	s.seedJoyce()

	record, found, err := s.store.LatestProviderFor(context.Background(), "evan", "JOYCE")
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal("1234567890", record.ExternalID)
	s.Equal("Evan", record.FirstName)
	s.Equal("Joyce", record.LastName)
	s.Equal("Boise", record.City)
	s.Equal("ID", record.State)
}

func (s *PostgresStoreSuite) TestLatestProviderForMiss() {
	_, found, err := s.store.LatestProviderFor(context.Background(), "Nobody", "Here")
	s.Require().NoError(err)
	s.False(found)
}

func (s *PostgresStoreSuite) TestHealth() {
	s.NoError(s.store.Health(context.Background()))
}
