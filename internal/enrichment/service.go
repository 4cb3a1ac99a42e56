package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/refdata"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/upstream"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/sentinel"
	xstrings "github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/strings"
)

// PageFetcher fetches one directory page.
type PageFetcher interface {
	Page(ctx context.Context, pageURL string) (string, error)
}

// Enricher collects education and training data from public directories and
// infers likely society memberships from specialty text.
type Enricher struct {
	fetcher PageFetcher
	sources []source
	rules   []refdata.SocietyRule
	logger  *slog.Logger
}

func NewEnricher(fetcher PageFetcher, rules []refdata.SocietyRule, logger *slog.Logger) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		sources: defaultSources(),
		rules:   rules,
		logger:  logger,
	}
}

type collectOutcome struct {
	ex      extract
	pageURL string
	err     error
}

// Enrich merges whatever the directory sources yield for the name. Every
// failure is soft: the worst outcome is an empty profile with a diagnostic.
//
// Sources fetch concurrently; the merge walks them in source order so scalar
// precedence stays deterministic.
func (e *Enricher) Enrich(ctx context.Context, name identity.NormalizedName, hint identity.Hint, specialty string) Profile {
	var profile Profile

	if name.First != "" && name.Last != "" {
		outcomes := make([]collectOutcome, len(e.sources))
		g, gctx := errgroup.WithContext(ctx)
		for i, src := range e.sources {
			g.Go(func() error {
				ex, pageURL, err := e.collect(gctx, src, name, hint)
				outcomes[i] = collectOutcome{ex: ex, pageURL: pageURL, err: err}
				return nil
			})
		}
		_ = g.Wait()

		var diagnostics []string
		for i, src := range e.sources {
			out := outcomes[i]
			if out.err != nil {
				diagnostics = append(diagnostics, upstream.Diagnostic(out.err))
				continue
			}
			if out.ex.empty() {
				continue
			}
			mergeExtract(&profile, out.ex, src.name, out.pageURL)
		}
		if !profile.Found && len(diagnostics) > 0 {
			profile.Diagnostic = strings.Join(xstrings.DedupeAndTrim(diagnostics), "; ")
		}
	}

	profile.Memberships = inferMemberships(specialty, e.rules)
	return profile
}

// collect tries the source's candidate URLs in order and returns the first
// page that yields anything. A missing profile page is an absent source, not
// a failure.
func (e *Enricher) collect(ctx context.Context, src source, name identity.NormalizedName, hint identity.Hint) (extract, string, error) {
	var lastErr error
	for _, pageURL := range src.urls(name.First, name.Last, hint) {
		html, err := e.fetcher.Page(ctx, pageURL)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			e.logger.WarnContext(ctx, "directory source failed",
				"source", src.name,
				"error", err,
			)
			lastErr = err
			continue
		}
		if ex := src.parse(html); !ex.empty() {
			return ex, pageURL, nil
		}
	}
	return extract{}, "", lastErr
}

// mergeExtract folds one source's findings into the profile. Scalars keep the
// first source's value; lists union with case-insensitive dedup.
func mergeExtract(profile *Profile, ex extract, sourceName, pageURL string) {
	profile.Found = true
	if profile.MedicalSchool == "" {
		profile.MedicalSchool = ex.medicalSchool
	}
	if profile.GraduationYear == "" {
		profile.GraduationYear = ex.graduationYear
	}
	profile.Residencies = xstrings.DedupeAndTrimFold(append(profile.Residencies, ex.residencies...))
	profile.Fellowships = xstrings.DedupeAndTrimFold(append(profile.Fellowships, ex.fellowships...))
	for _, cert := range ex.certifications {
		if !hasCertification(profile.Certifications, cert) {
			profile.Certifications = append(profile.Certifications, Certification{Name: cert, Source: sourceName})
		}
	}
	profile.Sources = append(profile.Sources, sourceName)
	if profile.ProfileURL == "" {
		profile.ProfileURL = pageURL
	}
}

func hasCertification(certs []Certification, name string) bool {
	for _, c := range certs {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// inferMemberships maps specialty text onto likely professional societies.
// The first matching keyword activates a rule; rule order fixes output order.
func inferMemberships(specialty string, rules []refdata.SocietyRule) []Membership {
	if specialty == "" {
		return nil
	}

	var out []Membership
	seen := make(map[string]struct{})
	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if !xstrings.ContainsFold(specialty, keyword) {
				continue
			}
			for _, society := range rule.Societies {
				if _, ok := seen[society]; ok {
					continue
				}
				seen[society] = struct{}{}
				out = append(out, Membership{Name: society, Inferred: true})
			}
			break
		}
	}
	return out
}
