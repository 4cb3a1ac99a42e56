// Package dossier runs the full pipeline for one physician: identity
// resolution, payment aggregation, publication matching, and education
// enrichment. Every stage returns a structurally complete result so partial
// dossiers render gracefully; only unusable input aborts a build.
package dossier

import (
	"time"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/enrichment"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/payments"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/publications"
)

// Request is one dossier build request after transport-level validation.
// Hints are optional; MaxPublications of zero takes the matcher's default.
type Request struct {
	RawName         string
	StateHint       string
	CityHint        string
	MaxPublications int
}

// Dossier is the assembled report. Stage sections carry their own Found
// flags and diagnostics; the dossier as a whole has no failure state beyond
// the input error that prevents building one at all.
type Dossier struct {
	Input        string                  `json:"input"`
	Name         identity.NormalizedName `json:"name"`
	Identity     identity.Resolution     `json:"identity"`
	Payments     payments.Summary        `json:"payments"`
	Publications publications.Set        `json:"publications"`
	Education    enrichment.Profile      `json:"education"`
	GeneratedAt  time.Time               `json:"generated_at"`
}
