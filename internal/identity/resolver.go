package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/upstream"
)

// RegistryClient searches the provider registry by name with optional locale filters.
type RegistryClient interface {
	Search(ctx context.Context, first, last string, hint Hint) ([]RegistryHit, error)
}

// PaymentsDirectory looks up the identity block embedded in payment records.
type PaymentsDirectory interface {
	// LatestProviderFor returns the identity fields from the most recent payment
	// row matching first+last case-insensitively. found=false means no rows.
	LatestProviderFor(ctx context.Context, first, last string) (ProviderRecord, bool, error)
}

// Resolver picks the single best identity for a normalized name.
//
// Two tiers, short-circuiting on success: a direct payments-store match wins
// outright (the payment history is already keyed to a verified identifier);
// otherwise registry candidates are scored and the best is chosen with up to
// four ranked alternates retained for disclosure.
type Resolver struct {
	payments          PaymentsDirectory
	registry          RegistryClient
	targetSpecialties []string
	logger            *slog.Logger
}

// NewResolver wires a Resolver. targetSpecialties is the fixed specialty table
// used for the +100 scoring bonus (refdata.Default().TargetSpecialties in production).
func NewResolver(payments PaymentsDirectory, registry RegistryClient, targetSpecialties []string, logger *slog.Logger) *Resolver {
	return &Resolver{
		payments:          payments,
		registry:          registry,
		targetSpecialties: targetSpecialties,
		logger:            logger,
	}
}

// Resolve returns the best identity for name, or Found=false with a diagnostic.
// Collaborator failures are never raised to the caller; they degrade the result.
func (r *Resolver) Resolve(ctx context.Context, name NormalizedName, hint Hint) Resolution {
	if !name.HasSurname() {
		return Resolution{Diagnostic: diagNoSurname}
	}

	var diagnostics []string

	provider, found, err := r.payments.LatestProviderFor(ctx, name.First, name.Last)
	switch {
	case err != nil:
		r.logger.WarnContext(ctx, "payments store lookup failed, falling back to registry",
			"error", err,
			"last_name", name.Last,
		)
		diagnostics = append(diagnostics, upstream.Diagnostic(err))
	case found:
		return Resolution{
			Found:  true,
			Source: SourcePayments,
			Best: Candidate{
				ExternalID:  provider.ExternalID,
				DisplayName: strings.TrimSpace(provider.FirstName + " " + provider.LastName),
				Specialty:   provider.Specialty,
				Location:    Location{City: provider.City, State: provider.State},
			},
		}
	}

	hits, err := r.registry.Search(ctx, name.First, name.Last, hint)
	if err != nil {
		r.logger.WarnContext(ctx, "registry search failed",
			"error", err,
			"last_name", name.Last,
		)
		diagnostics = append(diagnostics, upstream.Diagnostic(err))
		return Resolution{Diagnostic: strings.Join(diagnostics, "; ")}
	}

	candidates := rankRegistryHits(hits, hint, r.targetSpecialties)
	if len(candidates) == 0 {
		diagnostics = append(diagnostics, diagNoRegistryMatches)
		return Resolution{Diagnostic: strings.Join(diagnostics, "; ")}
	}

	alternates := candidates[1:]
	if len(alternates) > maxRetainedAlternates {
		alternates = alternates[:maxRetainedAlternates]
	}

	return Resolution{
		Found:      true,
		Source:     SourceRegistry,
		Best:       candidates[0],
		Alternates: alternates,
	}
}
