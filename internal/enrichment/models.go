// Package enrichment collects low-confidence education and training data for
// a resolved identity from public physician directories.
package enrichment

// Certification is one board certification with the directory that listed it.
type Certification struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// Membership is a likely professional-society membership inferred from
// specialty text. Never treated as verified.
type Membership struct {
	Name     string `json:"name"`
	Inferred bool   `json:"inferred"`
}

// Profile aggregates whatever the directory sources yielded. Found reflects
// scraped fields only; inferred memberships alone do not make a profile found.
type Profile struct {
	Found          bool            `json:"found"`
	MedicalSchool  string          `json:"medical_school,omitempty"`
	GraduationYear string          `json:"graduation_year,omitempty"`
	Residencies    []string        `json:"residencies,omitempty"`
	Fellowships    []string        `json:"fellowships,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
	Memberships    []Membership    `json:"memberships,omitempty"`
	Sources        []string        `json:"sources,omitempty"`
	ProfileURL     string          `json:"profile_url,omitempty"`
	Diagnostic     string          `json:"diagnostic,omitempty"`
}
