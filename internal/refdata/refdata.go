// Package refdata holds the fixed lookup tables the engine components consume.
// Tables are plain data injected at construction time so tests can substitute
// their own; Default returns the production set.
package refdata

import "strings"

// SocietyRule infers likely professional-society memberships from specialty text.
// Every keyword is matched as a case-insensitive substring.
type SocietyRule struct {
	Keywords  []string
	Societies []string
}

// Tables bundles every fixed lookup table. Components receive only the fields
// they need, never the whole bundle.
type Tables struct {
	// Name normalization.
	TitlePrefixes      []string
	CredentialSuffixes []string

	// Identity scoring.
	TargetSpecialties []string

	// Literature search and author scoring.
	QueryKeywords        []string
	AffiliationKeywords  []string
	RegionalInstitutions []string
	States               map[string]string // abbreviation -> full name

	// Payment aggregation.
	DesignatedOrg  string
	CompetitorOrgs []string

	// Education enrichment.
	SocietyRules []SocietyRule
}

// Default returns the production lookup tables.
func Default() Tables {
	return Tables{
		TitlePrefixes: []string{"DR", "DR.", "DOCTOR"},
		CredentialSuffixes: []string{
			"MD", "M.D.", "DO", "D.O.", "PHD", "PH.D.", "MBA", "MS",
			"FAANS", "FAHA", "FACS", "JR", "JR.", "SR", "SR.", "II", "III", "IV",
		},
		TargetSpecialties: []string{
			"Neurological Surgery",
			"Neurology",
			"Interventional Neuroradiology",
			"Vascular Neurology",
			"Neuroradiology",
			"Endovascular Surgical Neuroradiology",
			"Vascular Surgery",
			"Interventional Radiology",
		},
		QueryKeywords: []string{
			"stroke", "hemorrhage", "aneurysm", "neurovascular", "thrombectomy", "embolization",
		},
		AffiliationKeywords: []string{
			"neurosurg", "neurology", "stroke", "cerebrovascular",
			"neurointervent", "neuroradiol", "brain", "aneurysm",
		},
		RegionalInstitutions: []string{"st. luke", "saint luke", "boise", "idaho"},
		States:               usStates(),
		DesignatedOrg:        "J&J/Cerenovus",
		CompetitorOrgs: []string{
			"Penumbra", "Medtronic", "Stryker", "MicroVention-Terumo",
			"Balt", "Rapid Medical", "Phenox",
		},
		SocietyRules: []SocietyRule{
			{
				Keywords: []string{"neurological surgery", "neurosurg"},
				Societies: []string{
					"American Association of Neurological Surgeons (AANS)",
					"Congress of Neurological Surgeons (CNS)",
				},
			},
			{
				Keywords:  []string{"interventional", "endovascular"},
				Societies: []string{"Society of NeuroInterventional Surgery (SNIS)"},
			},
			{
				Keywords: []string{"vascular neurology", "stroke"},
				Societies: []string{
					"Society of Vascular and Interventional Neurology (SVIN)",
					"American Heart Association / American Stroke Association (AHA/ASA)",
				},
			},
			{
				Keywords:  []string{"neurology"},
				Societies: []string{"American Academy of Neurology (AAN)"},
			},
			{
				Keywords:  []string{"neuroradiology"},
				Societies: []string{"American Society of Neuroradiology (ASNR)"},
			},
		},
	}
}

// StateName returns the full state name for a two-letter abbreviation,
// or empty when unknown. The abbreviation may be any case.
func (t Tables) StateName(abbrev string) string {
	return t.States[strings.ToUpper(abbrev)]
}

func usStates() map[string]string {
	return map[string]string{
		"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas", "CA": "California",
		"CO": "Colorado", "CT": "Connecticut", "DE": "Delaware", "FL": "Florida", "GA": "Georgia",
		"HI": "Hawaii", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
		"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
		"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri",
		"MT": "Montana", "NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey",
		"NM": "New Mexico", "NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
		"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
		"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah", "VT": "Vermont",
		"VA": "Virginia", "WA": "Washington", "WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
	}
}
