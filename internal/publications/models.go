// Package publications disambiguates literature-index authorship. Candidate
// records are scored against the resolved identity's name and locale, then
// partitioned into confidence tiers. Low-confidence candidates are surfaced
// for review rather than dropped: a false negative costs more than noise.
package publications

import "strings"

// Tier labels how strongly a matched record is believed to belong to the
// resolved identity.
type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// Author is one entry in a record's ordered author list.
type Author struct {
	LastName    string
	ForeName    string
	Initials    string
	Affiliation string
}

// DisplayName renders the entry the way the index displays it.
func (a Author) DisplayName() string {
	return strings.TrimSpace(a.ForeName + " " + a.LastName)
}

// Record is one full literature-index record.
type Record struct {
	ID      string
	Title   string
	Journal string
	Year    int
	URL     string
	Authors []Author
}

// Candidate is a scored publication. Authors carries the leading names only;
// AuthorCount keeps the true count.
type Candidate struct {
	ID                      string   `json:"id"`
	Title                   string   `json:"title"`
	Journal                 string   `json:"journal,omitempty"`
	Year                    int      `json:"year,omitempty"`
	URL                     string   `json:"url,omitempty"`
	Authors                 []string `json:"authors,omitempty"`
	AuthorCount             int      `json:"author_count"`
	TargetAuthorAffiliation string   `json:"target_author_affiliation,omitempty"`
	MatchScore              int      `json:"match_score"`
	MatchReasons            []string `json:"match_reasons,omitempty"`
	Tier                    Tier     `json:"confidence_tier"`
}

// Set is the structurally complete matching result. Verified holds HIGH and
// MEDIUM candidates, Unverified holds LOW; both are always present and sorted
// by descending score then descending year. TotalHits echoes the index's count
// for the first strategy that reported one.
type Set struct {
	Found      bool        `json:"found"`
	TotalHits  int         `json:"total_hits"`
	Verified   []Candidate `json:"verified"`
	Unverified []Candidate `json:"unverified"`
	Note       string      `json:"note,omitempty"`
	Diagnostic string      `json:"diagnostic,omitempty"`
}
