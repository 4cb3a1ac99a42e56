package publications

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/upstream"
	xstrings "github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/strings"
)

// IndexClient is the literature-index collaborator contract.
type IndexClient interface {
	// Search returns matching record identifiers plus the index's total hit
	// count for the term, newest records first.
	Search(ctx context.Context, term string, max int) (ids []string, total int, err error)

	// FetchDetails returns full records for ids; unknown ids are omitted.
	FetchDetails(ctx context.Context, ids []string) ([]Record, error)
}

// defaultMaxResults caps the candidate set when the caller does not.
const defaultMaxResults = 30

// displayedAuthors caps the author names carried per candidate.
const displayedAuthors = 5

// Matcher runs the ordered query strategies against the literature index and
// scores each candidate's authorship for the target identity.
type Matcher struct {
	index  IndexClient
	tables MatchTables
	logger *slog.Logger
}

func NewMatcher(index IndexClient, tables MatchTables, logger *slog.Logger) *Matcher {
	return &Matcher{
		index:  index,
		tables: tables,
		logger: logger,
	}
}

// strategy is one index query descriptor. Strategies are declared from most to
// least specific; the merged id union keeps declaration order.
type strategy struct {
	name string
	term string
}

type searchOutcome struct {
	ids   []string
	total int
	err   error
}

// Match searches the index with every applicable strategy, fetches detail for
// the deduplicated id union, and partitions scored candidates into tiers.
// Index failures degrade the result; they are never returned as errors.
func (m *Matcher) Match(ctx context.Context, name identity.NormalizedName, hint identity.Hint, specialty string, maxResults int) Set {
	set := Set{Verified: []Candidate{}, Unverified: []Candidate{}}
	if name.First == "" || name.Last == "" {
		return set
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	strategies := m.strategies(name, hint)
	outcomes := make([]searchOutcome, len(strategies))

	g, gctx := errgroup.WithContext(ctx)
	for i, st := range strategies {
		g.Go(func() error {
			ids, total, err := m.index.Search(gctx, st.term, maxResults)
			if err != nil {
				m.logger.WarnContext(gctx, "literature search strategy failed",
					"strategy", st.name,
					"error", err,
				)
				outcomes[i] = searchOutcome{err: err}
				return nil
			}
			outcomes[i] = searchOutcome{ids: ids, total: total}
			return nil
		})
	}
	_ = g.Wait()

	ids, totalHits, allFailed := mergeOutcomes(outcomes, maxResults)
	set.TotalHits = totalHits
	if allFailed {
		set.Diagnostic = joinDiagnostics(outcomes)
		return set
	}
	if len(ids) == 0 {
		return set
	}

	records, err := m.index.FetchDetails(ctx, ids)
	if err != nil {
		m.logger.WarnContext(ctx, "literature detail fetch failed", "error", err)
		set.Diagnostic = upstream.Diagnostic(err)
		return set
	}

	for _, record := range records {
		candidate := m.scoreRecord(record, name, hint)
		if candidate.Tier == TierLow {
			set.Unverified = append(set.Unverified, candidate)
		} else {
			set.Verified = append(set.Verified, candidate)
		}
	}

	sortCandidates(set.Verified)
	sortCandidates(set.Unverified)

	set.Found = len(set.Verified) > 0 || len(set.Unverified) > 0
	switch {
	case len(set.Verified) > 0:
		set.Note = fmt.Sprintf("Found %d publications with location/specialty match", len(set.Verified))
	case len(set.Unverified) > 0:
		set.Note = "Publications found but author identity not verified - review affiliations"
	}
	return set
}

func (m *Matcher) strategies(name identity.NormalizedName, hint identity.Hint) []strategy {
	initial := firstInitial(name.First)
	quoted := fmt.Sprintf(`"%s %s"[Author]`, name.Last, initial)

	strategies := []strategy{{
		name: "domain_keywords",
		term: fmt.Sprintf("%s AND (%s)", quoted, strings.Join(m.tables.QueryKeywords, " OR ")),
	}}
	if hint.State != "" {
		stateTerm := m.tables.stateName(hint.State)
		if stateTerm == "" {
			stateTerm = hint.State
		}
		strategies = append(strategies, strategy{
			name: "state_affiliation",
			term: fmt.Sprintf("%s AND %s[Affiliation]", quoted, stateTerm),
		})
	}
	if hint.City != "" {
		strategies = append(strategies, strategy{
			name: "city_affiliation",
			term: fmt.Sprintf("%s AND %s[Affiliation]", quoted, hint.City),
		})
	}
	return append(strategies, strategy{
		name: "surname_initial",
		term: fmt.Sprintf("%s %s[Author]", name.Last, initial),
	})
}

// mergeOutcomes unions ids across strategies in declaration order, deduplicated
// and truncated at max. TotalHits is the first non-zero index count.
func mergeOutcomes(outcomes []searchOutcome, max int) (ids []string, totalHits int, allFailed bool) {
	seen := make(map[string]struct{})
	allFailed = true
	for _, outcome := range outcomes {
		if outcome.err != nil {
			continue
		}
		allFailed = false
		if totalHits == 0 {
			totalHits = outcome.total
		}
		for _, id := range outcome.ids {
			if len(ids) >= max {
				break
			}
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, totalHits, allFailed
}

func joinDiagnostics(outcomes []searchOutcome) string {
	var diagnostics []string
	for _, outcome := range outcomes {
		if outcome.err != nil {
			diagnostics = append(diagnostics, upstream.Diagnostic(outcome.err))
		}
	}
	return strings.Join(xstrings.DedupeAndTrim(diagnostics), "; ")
}

func (m *Matcher) scoreRecord(record Record, name identity.NormalizedName, hint identity.Hint) Candidate {
	compared, affiliation, _ := locateTargetAuthor(record.Authors, name)
	score, reasons := ScoreAuthorMatch(compared, affiliation, name, hint, m.tables)

	names := make([]string, 0, len(record.Authors))
	for _, author := range record.Authors {
		names = append(names, author.DisplayName())
	}
	displayed := names
	if len(displayed) > displayedAuthors {
		displayed = displayed[:displayedAuthors]
	}

	return Candidate{
		ID:                      record.ID,
		Title:                   record.Title,
		Journal:                 record.Journal,
		Year:                    record.Year,
		URL:                     record.URL,
		Authors:                 displayed,
		AuthorCount:             len(record.Authors),
		TargetAuthorAffiliation: affiliation,
		MatchScore:              score,
		MatchReasons:            reasons,
		Tier:                    TierFor(score),
	}
}

// locateTargetAuthor finds the author entry matching the target: exact surname
// and either exact first name or a matching first initial. Contributor name
// collisions are possible; the last matching entry wins. Returns the entry's
// own display name for scoring comparison.
func locateTargetAuthor(authors []Author, name identity.NormalizedName) (compared, affiliation string, located bool) {
	for _, author := range authors {
		if !strings.EqualFold(author.LastName, name.Last) {
			continue
		}
		if !strings.EqualFold(author.ForeName, name.First) && !initialsMatch(author.Initials, name.First) {
			continue
		}
		compared = author.DisplayName()
		affiliation = author.Affiliation
		located = true
	}
	return compared, affiliation, located
}

func initialsMatch(initials, first string) bool {
	ir, fr := []rune(initials), []rune(first)
	if len(ir) == 0 || len(fr) == 0 {
		return false
	}
	return unicode.ToUpper(ir[0]) == unicode.ToUpper(fr[0])
}

func firstInitial(first string) string {
	r := []rune(first)
	if len(r) == 0 {
		return ""
	}
	return strings.ToUpper(string(r[0]))
}

func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MatchScore != candidates[j].MatchScore {
			return candidates[i].MatchScore > candidates[j].MatchScore
		}
		return candidates[i].Year > candidates[j].Year
	})
}
