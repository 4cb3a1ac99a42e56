package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/upstream"
)

type fakePayments struct {
	calls  int
	record ProviderRecord
	found  bool
	err    error
}

func (f *fakePayments) LatestProviderFor(_ context.Context, _, _ string) (ProviderRecord, bool, error) {
	f.calls++
	return f.record, f.found, f.err
}

type fakeRegistry struct {
	calls    int
	lastHint Hint
	hits     []RegistryHit
	err      error
}

func (f *fakeRegistry) Search(_ context.Context, _, _ string, hint Hint) ([]RegistryHit, error) {
	f.calls++
	f.lastHint = hint
	return f.hits, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolvePrefersPaymentsStore(t *testing.T) {
	payments := &fakePayments{
		found: true,
		record: ProviderRecord{
			ExternalID: "1234567890",
			FirstName:  "Evan",
			LastName:   "Joyce",
			Specialty:  "Neurological Surgery",
			City:       "Boise",
			State:      "ID",
		},
	}
	registry := &fakeRegistry{
		hits: []RegistryHit{{Number: "9999999999", FirstName: "Evan", LastName: "Joyce", State: "ID"}},
	}
	resolver := NewResolver(payments, registry, nil, testLogger())

	got := resolver.Resolve(context.Background(), NormalizedName{First: "Evan", Last: "Joyce", Full: "Evan Joyce"}, Hint{State: "ID"})

	require.True(t, got.Found)
	assert.Equal(t, SourcePayments, got.Source)
	assert.Equal(t, "1234567890", got.Best.ExternalID)
	assert.Equal(t, "Evan Joyce", got.Best.DisplayName)
	assert.Equal(t, "Boise", got.Best.Location.City)
	assert.Zero(t, registry.calls, "a direct store hit must short-circuit the registry")
}

func TestResolveFallsBackToRegistry(t *testing.T) {
	payments := &fakePayments{}
	registry := &fakeRegistry{hits: []RegistryHit{
		{Number: "1111111111", FirstName: "Evan", LastName: "Joyce", State: "MT"},
		{Number: "2222222222", FirstName: "Evan", LastName: "Joyce", State: "ID", City: "Boise"},
	}}
	resolver := NewResolver(payments, registry, nil, testLogger())

	got := resolver.Resolve(context.Background(), NormalizedName{First: "Evan", Last: "Joyce", Full: "Evan Joyce"}, Hint{State: "ID", City: "Boise"})

	require.True(t, got.Found)
	assert.Equal(t, SourceRegistry, got.Source)
	assert.Equal(t, "2222222222", got.Best.ExternalID)
	require.Len(t, got.Alternates, 1)
	assert.Equal(t, "1111111111", got.Alternates[0].ExternalID)
	assert.Equal(t, Hint{State: "ID", City: "Boise"}, registry.lastHint)
}

func TestResolveCapsAlternates(t *testing.T) {
	hits := make([]RegistryHit, 8)
	for i := range hits {
		hits[i] = RegistryHit{Number: string(rune('a' + i)), LastName: "Joyce"}
	}
	resolver := NewResolver(&fakePayments{}, &fakeRegistry{hits: hits}, nil, testLogger())

	got := resolver.Resolve(context.Background(), NormalizedName{First: "Evan", Last: "Joyce"}, Hint{})

	require.True(t, got.Found)
	assert.Len(t, got.Alternates, 4)
}

func TestResolveWithoutSurname(t *testing.T) {
	payments := &fakePayments{}
	registry := &fakeRegistry{}
	resolver := NewResolver(payments, registry, nil, testLogger())

	got := resolver.Resolve(context.Background(), NormalizedName{First: "Smith", Full: "Smith"}, Hint{})

	assert.False(t, got.Found)
	assert.Equal(t, "cannot resolve identity without a surname", got.Diagnostic)
	assert.Zero(t, payments.calls, "no collaborator may be queried without a surname")
	assert.Zero(t, registry.calls, "no collaborator may be queried without a surname")
}

func TestResolvePaymentsFailureDegradesToRegistry(t *testing.T) {
	payments := &fakePayments{err: upstream.New(upstream.SourcePayments, upstream.CategoryUnavailable, "query failed", errors.New("conn refused"))}
	registry := &fakeRegistry{hits: []RegistryHit{{Number: "1111111111", LastName: "Joyce"}}}
	resolver := NewResolver(payments, registry, nil, testLogger())

	got := resolver.Resolve(context.Background(), NormalizedName{First: "Evan", Last: "Joyce"}, Hint{})

	require.True(t, got.Found)
	assert.Equal(t, SourceRegistry, got.Source)
	assert.Equal(t, 1, registry.calls)
}

func TestResolveBothTiersFail(t *testing.T) {
	payments := &fakePayments{err: upstream.New(upstream.SourcePayments, upstream.CategoryUnavailable, "store down", nil)}
	registry := &fakeRegistry{err: upstream.New(upstream.SourceRegistry, upstream.CategoryTimeout, "search timed out", context.DeadlineExceeded)}
	resolver := NewResolver(payments, registry, nil, testLogger())

	got := resolver.Resolve(context.Background(), NormalizedName{First: "Evan", Last: "Joyce"}, Hint{})

	assert.False(t, got.Found)
	assert.Equal(t, "payments_store unavailable: store down; registry timeout: search timed out", got.Diagnostic)
}

func TestResolveNoRegistryMatches(t *testing.T) {
	resolver := NewResolver(&fakePayments{}, &fakeRegistry{}, nil, testLogger())

	got := resolver.Resolve(context.Background(), NormalizedName{First: "Evan", Last: "Joyce"}, Hint{})

	assert.False(t, got.Found)
	assert.Equal(t, "no registry matches", got.Diagnostic)
}

func TestResolutionDegraded(t *testing.T) {
	tests := []struct {
		name string
		res  Resolution
		want bool
	}{
		{"resolved", Resolution{Found: true}, false},
		{"clean no-match", Resolution{Diagnostic: "no registry matches"}, false},
		{"bad input", Resolution{Diagnostic: "cannot resolve identity without a surname"}, false},
		{"registry down", Resolution{Diagnostic: "registry unavailable: dial tcp: connection refused"}, true},
		{"store down then no match", Resolution{Diagnostic: "payments_store unavailable: store down; no registry matches"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Degraded())
		})
	}
}
