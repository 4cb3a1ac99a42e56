package identity

import (
	"sort"
	"strings"

	xstrings "github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/strings"
)

// Scoring weights for registry candidates.
const (
	registryBaseScore     = 100
	stateMatchBonus       = 50
	cityMatchBonus        = 30
	targetSpecialtyBonus  = 100
	maxRetainedAlternates = 4
)

// ScoreRegistryHit scores one raw registry candidate against the caller's
// locale hints and the target-specialty table. Pure function: no I/O, no
// mutation, deterministic for a given input.
//
// Weights: base 100, +50 exact state match, +30 city substring match,
// +100 when the primary specialty contains any target-specialty entry.
func ScoreRegistryHit(hit RegistryHit, hint Hint, targetSpecialties []string) int {
	score := registryBaseScore

	if hint.State != "" && strings.EqualFold(hit.State, hint.State) {
		score += stateMatchBonus
	}
	if hint.City != "" && xstrings.ContainsFold(hit.City, hint.City) {
		score += cityMatchBonus
	}

	if specialty := hit.PrimarySpecialty(); specialty != "" {
		for _, target := range targetSpecialties {
			if xstrings.ContainsFold(specialty, target) {
				score += targetSpecialtyBonus
				break
			}
		}
	}

	return score
}

// rankRegistryHits scores all hits, sorts descending by score with original
// order preserved on ties, and converts them into candidates.
func rankRegistryHits(hits []RegistryHit, hint Hint, targetSpecialties []string) []Candidate {
	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		candidates = append(candidates, candidateFromHit(hit, ScoreRegistryHit(hit, hint, targetSpecialties)))
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

func candidateFromHit(hit RegistryHit, score int) Candidate {
	return Candidate{
		ExternalID:      hit.Number,
		DisplayName:     strings.TrimSpace(hit.FirstName + " " + hit.LastName),
		Specialty:       hit.PrimarySpecialty(),
		Specialties:     hit.Specialties,
		Location:        Location{City: hit.City, State: hit.State},
		Organization:    hit.Organization,
		Credentials:     hit.Credential,
		EnumerationDate: hit.EnumerationDate,
		Score:           score,
	}
}
