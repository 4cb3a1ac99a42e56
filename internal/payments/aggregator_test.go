package payments

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/upstream"
)

const designated = "J&J/Cerenovus"

type fakeStore struct {
	byIDCalls   int
	byNameCalls int
	items       []LineItem
	err         error
}

func (f *fakeStore) LineItemsByIdentifier(_ context.Context, _ string) ([]LineItem, error) {
	f.byIDCalls++
	return f.items, f.err
}

func (f *fakeStore) LineItemsByName(_ context.Context, _, _ string) ([]LineItem, error) {
	f.byNameCalls++
	return f.items, f.err
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAggregateGroupsAndOrders(t *testing.T) {
	store := &fakeStore{items: []LineItem{
		{Organization: "Medtronic", Amount: money("100.00"), Count: 2, ProgramYear: 2023},
		{Organization: "Penumbra", Amount: money("250.50"), Count: 1, ProgramYear: 2024},
		{Organization: designated, Amount: money("999.99"), Count: 9, ProgramYear: 2024},
		{Organization: "Medtronic", Amount: money("50.25"), Count: 1, ProgramYear: 2022},
		{Organization: "  ", Amount: money("10.00"), Count: 1, ProgramYear: 2024},
	}}
	aggregator := NewAggregator(store, designated, testLogger())

	got := aggregator.Aggregate(context.Background(), QueryRef{ExternalID: "1234567890"})

	require.True(t, got.Found)
	require.Len(t, got.Counterparties, 4)

	assert.Equal(t, "Penumbra", got.Counterparties[0].Organization)
	assert.Equal(t, "Medtronic", got.Counterparties[1].Organization)
	assert.True(t, got.Counterparties[1].TotalAmount.Equal(money("150.25")))
	assert.Equal(t, 3, got.Counterparties[1].TotalCount)
	assert.Equal(t, "Other", got.Counterparties[2].Organization)

	last := got.Counterparties[3]
	assert.Equal(t, designated, last.Organization)
	assert.True(t, last.Designated, "designated org sorts last even with the largest total")

	assert.True(t, got.CompetitorTotal.Equal(money("410.75")))
	assert.True(t, got.DesignatedTotal.Equal(money("999.99")))
}

func TestAggregateQuerySelection(t *testing.T) {
	t.Run("identifier used exclusively when present", func(t *testing.T) {
		store := &fakeStore{}
		NewAggregator(store, designated, testLogger()).
			Aggregate(context.Background(), QueryRef{ExternalID: "1234567890", First: "Evan", Last: "Joyce"})

		assert.Equal(t, 1, store.byIDCalls)
		assert.Zero(t, store.byNameCalls)
	})

	t.Run("name fallback without identifier", func(t *testing.T) {
		store := &fakeStore{}
		NewAggregator(store, designated, testLogger()).
			Aggregate(context.Background(), QueryRef{First: "Evan", Last: "Joyce"})

		assert.Zero(t, store.byIDCalls)
		assert.Equal(t, 1, store.byNameCalls)
	})
}

func TestAggregateStoreFailure(t *testing.T) {
	store := &fakeStore{err: upstream.New(upstream.SourcePayments, upstream.CategoryUnavailable, "query failed", errors.New("conn refused"))}
	aggregator := NewAggregator(store, designated, testLogger())

	got := aggregator.Aggregate(context.Background(), QueryRef{First: "Evan", Last: "Joyce"})

	assert.False(t, got.Found)
	assert.Equal(t, "payments_store unavailable: query failed", got.Diagnostic)
	assert.Empty(t, got.Counterparties)
}

func TestAggregateNoRows(t *testing.T) {
	got := NewAggregator(&fakeStore{}, designated, testLogger()).
		Aggregate(context.Background(), QueryRef{First: "Evan", Last: "Joyce"})

	assert.False(t, got.Found)
	assert.Empty(t, got.Diagnostic, "an empty result is not an error")
}

func TestSummarizeTiesKeepFirstSeenOrder(t *testing.T) {
	items := []LineItem{
		{Organization: "Alpha Medical", Amount: money("100")},
		{Organization: "Beta Devices", Amount: money("100")},
	}

	got := summarize(items, designated)

	require.Len(t, got.Counterparties, 2)
	assert.Equal(t, "Alpha Medical", got.Counterparties[0].Organization)
	assert.Equal(t, "Beta Devices", got.Counterparties[1].Organization)
}

// Conservation: designated total plus competitor total equals the sum of every
// line item amount, for arbitrary synthetic row sets.
func TestSummarizeConservation(t *testing.T) {
	faker := gofakeit.New(7)
	orgs := []string{designated, "Penumbra", "Medtronic", "Stryker", "MicroVention-Terumo", ""}

	for round := 0; round < 50; round++ {
		n := faker.Number(1, 40)
		items := make([]LineItem, 0, n)
		want := decimal.Zero
		for i := 0; i < n; i++ {
			amount := decimal.NewFromFloat(faker.Price(0, 250000))
			items = append(items, LineItem{
				Organization: faker.RandomString(orgs),
				Amount:       amount,
				Count:        faker.Number(1, 12),
				ProgramYear:  faker.Number(2016, 2024),
			})
			want = want.Add(amount)
		}

		summary := summarize(items, designated)
		got := summary.CompetitorTotal.Add(summary.DesignatedTotal)
		require.Truef(t, got.Equal(want), "round %d: %s != %s", round, got, want)

		for _, total := range summary.Counterparties {
			if total.Organization == designated {
				assert.True(t, total.Designated)
				assert.Truef(t, summary.DesignatedTotal.Equal(total.TotalAmount),
					"round %d: designated total must come from the designated group alone", round)
			} else {
				assert.False(t, total.Designated)
			}
		}
	}
}
