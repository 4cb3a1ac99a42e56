// Package identity resolves a free-text physician name to a single best
// candidate identity across the payments store and the provider registry.
package identity

// NormalizedName is the parsed form of a raw input name.
// Immutable once produced; Full carries all surviving tokens including middle names.
type NormalizedName struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Full  string `json:"full"`
}

// IsEmpty reports whether nothing survived normalization.
func (n NormalizedName) IsEmpty() bool {
	return n.Full == ""
}

// HasSurname reports whether the name can key identity queries.
// Callers must treat a missing surname as a terminal input error.
func (n NormalizedName) HasSurname() bool {
	return n.Last != ""
}

// Location is a practice location.
type Location struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// Hint carries optional caller-supplied locale filters for identity resolution.
type Hint struct {
	State string
	City  string
}

// SpecialtyClaim is one taxonomy entry from a registry record.
type SpecialtyClaim struct {
	Description string `json:"description"`
	Primary     bool   `json:"primary"`
	State       string `json:"state,omitempty"`
	License     string `json:"license,omitempty"`
}

// Candidate is one scored identity candidate.
type Candidate struct {
	ExternalID      string           `json:"external_id,omitempty"`
	DisplayName     string           `json:"display_name"`
	Specialty       string           `json:"specialty,omitempty"`
	Specialties     []SpecialtyClaim `json:"specialties,omitempty"`
	Location        Location         `json:"location"`
	Organization    string           `json:"organization,omitempty"`
	Credentials     string           `json:"credentials,omitempty"`
	EnumerationDate string           `json:"enumeration_date,omitempty"`
	Score           int              `json:"score"`
}

// Source tells which collaborator produced the resolved identity.
type Source string

const (
	// SourcePayments marks a direct payments-store hit, authoritative because the
	// payment history is already keyed to a verified identifier.
	SourcePayments Source = "payments_store"

	// SourceRegistry marks a scored registry search result.
	SourceRegistry Source = "registry"
)

// Diagnostics for resolution failures that involve no collaborator fault.
// Degraded relies on the exact texts.
const (
	diagNoRegistryMatches = "no registry matches"
	diagNoSurname         = "cannot resolve identity without a surname"
)

// Resolution is the outcome of identity resolution. Always structurally
// complete: Found=false still carries a Diagnostic the caller can render.
type Resolution struct {
	Found      bool        `json:"found"`
	Source     Source      `json:"source,omitempty"`
	Best       Candidate   `json:"best,omitempty"`
	Alternates []Candidate `json:"alternates,omitempty"`
	Diagnostic string      `json:"diagnostic,omitempty"`
}

// Degraded reports whether a collaborator failure contributed to this
// resolution, as opposed to a success, a clean no-match, or bad input.
func (r Resolution) Degraded() bool {
	switch r.Diagnostic {
	case "", diagNoRegistryMatches, diagNoSurname:
		return false
	}
	return true
}

// RegistryHit is the raw candidate record shape the registry collaborator returns.
// The client adapts whatever live schema the registry exposes into this.
type RegistryHit struct {
	Number          string
	FirstName       string
	LastName        string
	Credential      string
	EnumerationDate string
	City            string
	State           string
	Organization    string
	Specialties     []SpecialtyClaim
}

// PrimarySpecialty returns the description of the first primary-flagged
// specialty claim, falling back to the first claim when none is flagged.
func (h RegistryHit) PrimarySpecialty() string {
	for _, s := range h.Specialties {
		if s.Primary {
			return s.Description
		}
	}
	if len(h.Specialties) > 0 {
		return h.Specialties[0].Description
	}
	return ""
}

// ProviderRecord is the embedded identity block a payments line item carries.
type ProviderRecord struct {
	ExternalID string
	FirstName  string
	LastName   string
	Specialty  string
	City       string
	State      string
}
