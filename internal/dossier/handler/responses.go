package handler

import (
	"strconv"
	"time"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/dossier"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/enrichment"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/payments"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/publications"
)

// BuildResponse is the body returned by POST /v1/dossiers.
type BuildResponse struct {
	Input        string                  `json:"input"`
	Name         identity.NormalizedName `json:"name"`
	Identity     IdentitySection         `json:"identity"`
	Payments     payments.Summary        `json:"payments"`
	Publications publications.Set        `json:"publications"`
	Education    enrichment.Profile      `json:"education"`
	GeneratedAt  time.Time               `json:"generated_at"`
}

// IdentitySection decorates the resolution with fields derived for display.
type IdentitySection struct {
	identity.Resolution
	YearsInPractice int `json:"years_in_practice,omitempty"`
}

// FromDossier shapes a built dossier into the HTTP response.
func FromDossier(d dossier.Dossier) BuildResponse {
	return BuildResponse{
		Input: d.Input,
		Name:  d.Name,
		Identity: IdentitySection{
			Resolution:      d.Identity,
			YearsInPractice: yearsInPractice(d.Identity, d.GeneratedAt),
		},
		Payments:     d.Payments,
		Publications: d.Publications,
		Education:    d.Education,
		GeneratedAt:  d.GeneratedAt,
	}
}

// yearsInPractice derives tenure from the registry enumeration date, which
// arrives as an ISO date string. Unparseable or future dates yield zero and
// the field is omitted.
func yearsInPractice(res identity.Resolution, now time.Time) int {
	if !res.Found || len(res.Best.EnumerationDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(res.Best.EnumerationDate[:4])
	if err != nil {
		return 0
	}
	years := now.Year() - year
	if years < 0 {
		return 0
	}
	return years
}
