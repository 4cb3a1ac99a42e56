package handler

import (
	"strings"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/dossier"
	dErrors "github.com/stinkypony1968-a11y/physician-dossier/pkg/domain-errors"
)

const (
	maxNameLength      = 200
	maxCityLength      = 100
	maxPublicationsCap = 100
)

// BuildRequest is the body accepted by POST /v1/dossiers and
// POST /v1/dossiers/export.
type BuildRequest struct {
	Name            string `json:"name"`
	State           string `json:"state,omitempty"`
	City            string `json:"city,omitempty"`
	MaxPublications int    `json:"max_publications,omitempty"`
}

// Validate implements httputil.Validatable. It trims whitespace in place so
// downstream stages see the cleaned values.
func (r *BuildRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 200 characters")
	}

	r.State = strings.ToUpper(strings.TrimSpace(r.State))
	if r.State != "" && len(r.State) != 2 {
		return dErrors.New(dErrors.CodeValidation, "state must be a two-letter abbreviation")
	}

	r.City = strings.TrimSpace(r.City)
	if len(r.City) > maxCityLength {
		return dErrors.New(dErrors.CodeValidation, "city must be at most 100 characters")
	}

	if r.MaxPublications < 0 {
		return dErrors.New(dErrors.CodeValidation, "max_publications must not be negative")
	}
	if r.MaxPublications > maxPublicationsCap {
		return dErrors.New(dErrors.CodeValidation, "max_publications must be at most 100")
	}
	return nil
}

// ToPipelineRequest converts the validated body into a pipeline request.
func (r *BuildRequest) ToPipelineRequest() dossier.Request {
	return dossier.Request{
		RawName:         r.Name,
		StateHint:       r.State,
		CityHint:        r.City,
		MaxPublications: r.MaxPublications,
	}
}
