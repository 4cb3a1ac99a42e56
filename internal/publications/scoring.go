package publications

import (
	"strings"
	"unicode"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/refdata"
	xstrings "github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/strings"
)

// Author-match weights. Surname plus full first name alone reaches the HIGH
// threshold; an initial-only name match needs affiliation evidence on top.
const (
	surnameBonus     = 20
	fullNameBonus    = 30
	initialBonus     = 10
	stateBonus       = 25
	cityBonus        = 30
	keywordBonus     = 15
	institutionBonus = 20

	tierHighThreshold   = 50
	tierMediumThreshold = 30
)

// MatchTables is the fixed reference data the matcher consumes.
type MatchTables struct {
	QueryKeywords        []string
	AffiliationKeywords  []string
	RegionalInstitutions []string
	States               map[string]string
}

// TablesFrom selects the matcher's slice of the reference tables.
func TablesFrom(t refdata.Tables) MatchTables {
	return MatchTables{
		QueryKeywords:        t.QueryKeywords,
		AffiliationKeywords:  t.AffiliationKeywords,
		RegionalInstitutions: t.RegionalInstitutions,
		States:               t.States,
	}
}

func (t MatchTables) stateName(abbrev string) string {
	return t.States[strings.ToUpper(abbrev)]
}

// TierFor maps a match score to its confidence tier.
func TierFor(score int) Tier {
	switch {
	case score >= tierHighThreshold:
		return TierHigh
	case score >= tierMediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// ScoreAuthorMatch scores how likely the located author entry belongs to the
// target identity. comparedAuthor is the entry's own display name, empty when
// no entry matched. Pure; each contributing rule records a reason.
func ScoreAuthorMatch(comparedAuthor, affiliation string, name identity.NormalizedName, hint identity.Hint, tables MatchTables) (int, []string) {
	score := 0
	var reasons []string

	if xstrings.ContainsFold(comparedAuthor, name.Last) {
		score += surnameBonus
		switch {
		case xstrings.ContainsFold(comparedAuthor, name.First):
			score += fullNameBonus
			reasons = append(reasons, "Full name match")
		case firstInitialMatches(comparedAuthor, name.First):
			score += initialBonus
			reasons = append(reasons, "Name initial match")
		}
	}

	if affiliation != "" {
		if hint.State != "" {
			if xstrings.ContainsFold(affiliation, hint.State) ||
				xstrings.ContainsFold(affiliation, tables.stateName(hint.State)) {
				score += stateBonus
				reasons = append(reasons, "State: "+hint.State)
			}
		}
		if hint.City != "" && xstrings.ContainsFold(affiliation, hint.City) {
			score += cityBonus
			reasons = append(reasons, "City: "+hint.City)
		}
		for _, keyword := range tables.AffiliationKeywords {
			if xstrings.ContainsFold(affiliation, keyword) {
				score += keywordBonus
				reasons = append(reasons, "Neuro affiliation")
				break
			}
		}
		for _, institution := range tables.RegionalInstitutions {
			if xstrings.ContainsFold(affiliation, institution) {
				score += institutionBonus
				reasons = append(reasons, "Regional institution")
				break
			}
		}
	}

	return score, reasons
}

// firstInitialMatches reports whether the compared string's first token starts
// with the target's first initial. A string with no tokens never matches.
func firstInitialMatches(comparedAuthor, first string) bool {
	firstRunes := []rune(first)
	if len(firstRunes) == 0 {
		return false
	}
	tokens := strings.Fields(comparedAuthor)
	if len(tokens) == 0 {
		return false
	}
	tokenRunes := []rune(tokens[0])
	return unicode.ToLower(tokenRunes[0]) == unicode.ToLower(firstRunes[0])
}
