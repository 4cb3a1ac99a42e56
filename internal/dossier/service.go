package dossier

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/audit"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/dossier/metrics"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/enrichment"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/payments"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/publications"
	dErrors "github.com/stinkypony1968-a11y/physician-dossier/pkg/domain-errors"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/requestcontext"
)

// Stage contracts, defined on the consumer side so the pipeline never
// depends on concrete collaborator clients.

// IdentityResolver picks the best identity for a normalized name.
type IdentityResolver interface {
	Resolve(ctx context.Context, name identity.NormalizedName, hint identity.Hint) identity.Resolution
}

// PaymentAggregator summarizes disclosure line items for a query reference.
type PaymentAggregator interface {
	Aggregate(ctx context.Context, ref payments.QueryRef) payments.Summary
}

// PublicationMatcher finds and scores literature authored by the identity.
type PublicationMatcher interface {
	Match(ctx context.Context, name identity.NormalizedName, hint identity.Hint, specialty string, maxResults int) publications.Set
}

// EducationEnricher scrapes public directory profiles for training history.
type EducationEnricher interface {
	Enrich(ctx context.Context, name identity.NormalizedName, hint identity.Hint, specialty string) enrichment.Profile
}

const tracerName = "physician-dossier"

const (
	stageIdentity     = "identity"
	stagePayments     = "payments"
	stagePublications = "publications"
	stageEnrichment   = "enrichment"
)

// Service sequences the pipeline stages and assembles the dossier.
type Service struct {
	normalizer *identity.Normalizer
	resolver   IdentityResolver
	aggregator PaymentAggregator
	matcher    PublicationMatcher
	enricher   EducationEnricher
	publisher  *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewService wires a Service. enricher may be nil to disable the education
// stage; publisher and metrics may be nil in tests.
func NewService(
	normalizer *identity.Normalizer,
	resolver IdentityResolver,
	aggregator PaymentAggregator,
	matcher PublicationMatcher,
	enricher EducationEnricher,
	publisher *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		normalizer: normalizer,
		resolver:   resolver,
		aggregator: aggregator,
		matcher:    matcher,
		enricher:   enricher,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
	}
}

// BuildDossier runs the pipeline for one physician name. The only error it
// returns is the input error for an unusable name; every collaborator
// problem degrades the affected section instead.
//
// Caller hints feed identity resolution only. Downstream stages take their
// locale and specialty from the resolved identity, so a failed resolution
// runs them name-only rather than trusting unverified caller input.
func (s *Service) BuildDossier(ctx context.Context, req Request) (Dossier, error) {
	started := time.Now()

	name := s.normalizer.Normalize(req.RawName)
	if !name.HasSurname() {
		return Dossier{}, dErrors.New(dErrors.CodeInvalidInput, "cannot build a dossier without a surname")
	}

	s.emit(ctx, audit.NewEvent(audit.ActionDossierRequested, name.Full, map[string]string{
		"name":       req.RawName,
		"client_ip":  requestcontext.ClientIP(ctx),
		"user_agent": requestcontext.UserAgent(ctx),
	}))

	resolution := s.resolveIdentity(ctx, name, identity.Hint{State: req.StateHint, City: req.CityHint})
	hint, specialty := downstreamFilters(resolution)

	summary := s.aggregatePayments(ctx, paymentsRef(resolution, name))
	set := s.matchPublications(ctx, name, hint, specialty, req.MaxPublications)
	profile := s.enrichEducation(ctx, name, hint, specialty)

	dossier := Dossier{
		Input:        req.RawName,
		Name:         name,
		Identity:     resolution,
		Payments:     summary,
		Publications: set,
		Education:    profile,
		GeneratedAt:  requestcontext.Now(ctx),
	}

	duration := time.Since(started)
	s.metrics.ObserveBuild(duration)
	s.emit(ctx, builtEvent(dossier, duration))

	s.logger.InfoContext(ctx, "dossier built",
		"subject", name.Full,
		"resolved", resolution.Found,
		"source", string(resolution.Source),
		"payments_found", summary.Found,
		"publications_found", set.Found,
		"education_found", profile.Found,
		"duration_ms", duration.Milliseconds(),
	)

	return dossier, nil
}

func (s *Service) resolveIdentity(ctx context.Context, name identity.NormalizedName, hint identity.Hint) identity.Resolution {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dossier.identity")
	defer span.End()

	started := time.Now()
	resolution := s.resolver.Resolve(ctx, name, hint)
	elapsed := time.Since(started)
	s.metrics.ObserveStage(stageIdentity, elapsed)

	span.SetAttributes(
		attribute.Bool("found", resolution.Found),
		attribute.String("source", string(resolution.Source)),
		attribute.Int("score", resolution.Best.Score),
	)

	if resolution.Found {
		s.metrics.RecordResolution(string(resolution.Source))
	} else {
		s.metrics.RecordResolution("not_found")
	}

	if resolution.Degraded() {
		s.reportCollaboratorFailure(ctx, stageIdentity, resolution.Diagnostic, elapsed)
	}
	return resolution
}

func (s *Service) aggregatePayments(ctx context.Context, ref payments.QueryRef) payments.Summary {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dossier.payments")
	defer span.End()

	started := time.Now()
	summary := s.aggregator.Aggregate(ctx, ref)
	elapsed := time.Since(started)
	s.metrics.ObserveStage(stagePayments, elapsed)

	span.SetAttributes(
		attribute.Bool("found", summary.Found),
		attribute.Int("counterparties", len(summary.Counterparties)),
	)

	if !summary.Found && summary.Diagnostic != "" {
		s.reportCollaboratorFailure(ctx, stagePayments, summary.Diagnostic, elapsed)
	}
	return summary
}

func (s *Service) matchPublications(ctx context.Context, name identity.NormalizedName, hint identity.Hint, specialty string, maxResults int) publications.Set {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dossier.publications")
	defer span.End()

	started := time.Now()
	set := s.matcher.Match(ctx, name, hint, specialty, maxResults)
	elapsed := time.Since(started)
	s.metrics.ObserveStage(stagePublications, elapsed)

	span.SetAttributes(
		attribute.Bool("found", set.Found),
		attribute.Int("verified", len(set.Verified)),
		attribute.Int("unverified", len(set.Unverified)),
	)
	s.recordTiers(set)

	if !set.Found && set.Diagnostic != "" {
		s.reportCollaboratorFailure(ctx, stagePublications, set.Diagnostic, elapsed)
	}
	return set
}

func (s *Service) enrichEducation(ctx context.Context, name identity.NormalizedName, hint identity.Hint, specialty string) enrichment.Profile {
	if s.enricher == nil {
		return enrichment.Profile{}
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "dossier.enrichment")
	defer span.End()

	started := time.Now()
	profile := s.enricher.Enrich(ctx, name, hint, specialty)
	elapsed := time.Since(started)
	s.metrics.ObserveStage(stageEnrichment, elapsed)

	span.SetAttributes(attribute.Bool("found", profile.Found))

	if !profile.Found && profile.Diagnostic != "" {
		s.reportCollaboratorFailure(ctx, stageEnrichment, profile.Diagnostic, elapsed)
	}
	return profile
}

func (s *Service) recordTiers(set publications.Set) {
	counts := make(map[publications.Tier]int)
	for _, c := range set.Verified {
		counts[c.Tier]++
	}
	for _, c := range set.Unverified {
		counts[c.Tier]++
	}
	for tier, n := range counts {
		s.metrics.RecordPublicationTier(strings.ToLower(string(tier)), n)
	}
}

func (s *Service) reportCollaboratorFailure(ctx context.Context, stage, diagnostic string, elapsed time.Duration) {
	s.emit(ctx, audit.NewEvent(audit.ActionCollaboratorFailed, "", map[string]string{
		"stage":       stage,
		"diagnostic":  diagnostic,
		"duration_ms": strconv.FormatInt(elapsed.Milliseconds(), 10),
	}))
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.publisher != nil {
		s.publisher.Emit(ctx, event)
	}
}

// downstreamFilters derives the locale hint and specialty forwarded past
// identity resolution. Both come from the resolved identity or not at all.
func downstreamFilters(res identity.Resolution) (identity.Hint, string) {
	if !res.Found {
		return identity.Hint{}, ""
	}
	return identity.Hint{
		State: res.Best.Location.State,
		City:  res.Best.Location.City,
	}, res.Best.Specialty
}

// paymentsRef prefers the resolved external identifier; without one the
// store query falls back to the normalized name.
func paymentsRef(res identity.Resolution, name identity.NormalizedName) payments.QueryRef {
	if res.Found && res.Best.ExternalID != "" {
		return payments.QueryRef{ExternalID: res.Best.ExternalID}
	}
	return payments.QueryRef{First: name.First, Last: name.Last}
}

func builtEvent(d Dossier, duration time.Duration) audit.Event {
	attrs := map[string]string{
		"resolved":           strconv.FormatBool(d.Identity.Found),
		"payments_found":     strconv.FormatBool(d.Payments.Found),
		"publications_found": strconv.FormatBool(d.Publications.Found),
		"verified_count":     strconv.Itoa(len(d.Publications.Verified)),
		"unverified_count":   strconv.Itoa(len(d.Publications.Unverified)),
		"education_found":    strconv.FormatBool(d.Education.Found),
		"duration_ms":        strconv.FormatInt(duration.Milliseconds(), 10),
	}
	if d.Identity.Found {
		attrs["source"] = string(d.Identity.Source)
	}

	subject := d.Name.Full
	if d.Identity.Found && d.Identity.Best.ExternalID != "" {
		subject = "npi:" + d.Identity.Best.ExternalID
		attrs["external_id"] = d.Identity.Best.ExternalID
	}

	return audit.NewEvent(audit.ActionDossierBuilt, subject, attrs)
}
