package dossier

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/enrichment"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/payments"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/publications"
)

func exportFixture() Dossier {
	return Dossier{
		Input: "Dr. Evan Joyce, MD",
		Name:  identity.NormalizedName{First: "Evan", Last: "Joyce", Full: "Evan Joyce"},
		Identity: identity.Resolution{
			Found:  true,
			Source: identity.SourcePayments,
			Best: identity.Candidate{
				ExternalID:  "1396882474",
				DisplayName: "EVAN JOYCE",
				Specialty:   "Neurological Surgery",
				Location:    identity.Location{City: "BOISE", State: "ID"},
				Score:       100,
			},
		},
		Payments: payments.Summary{
			Found: true,
			Counterparties: []payments.CounterpartyTotal{
				{Organization: "Penumbra Inc", TotalAmount: decimal.NewFromFloat(1250.50), TotalCount: 4},
				{Organization: "Stryker Corp", TotalAmount: decimal.NewFromFloat(89.27), TotalCount: 1},
				{Organization: "J&J/Cerenovus", TotalAmount: decimal.NewFromFloat(310.00), TotalCount: 2, Designated: true},
			},
			CompetitorTotal: decimal.NewFromFloat(1339.77),
			DesignatedTotal: decimal.NewFromFloat(310.00),
		},
		Publications: publications.Set{
			Found:     true,
			TotalHits: 2,
			Verified: []publications.Candidate{{
				ID:                      "pub-88",
				Title:                   "Endovascular thrombectomy outcomes",
				Journal:                 "J Neurosurg",
				Year:                    2021,
				Authors:                 []string{"Joyce E", "Smith A"},
				TargetAuthorAffiliation: "University of Utah",
				MatchScore:              62,
				Tier:                    publications.TierHigh,
			}},
			Unverified: []publications.Candidate{{
				ID:         "pub-91",
				Title:      "Case series without affiliation",
				MatchScore: 18,
				Tier:       publications.TierLow,
			}},
		},
		Education: enrichment.Profile{
			Found:          true,
			MedicalSchool:  "University of Utah School of Medicine",
			GraduationYear: "2008",
			Residencies:    []string{"Neurological Surgery, University of Utah"},
			Certifications: []enrichment.Certification{{Name: "Neurological Surgery", Source: "ABMS"}},
		},
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	fixture := exportFixture()

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, fixture))

	var decoded Dossier
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, fixture.Input, decoded.Input)
	assert.Equal(t, fixture.Identity.Best.ExternalID, decoded.Identity.Best.ExternalID)
	assert.True(t, fixture.Payments.CompetitorTotal.Equal(decoded.Payments.CompetitorTotal))
	assert.Equal(t, fixture.Publications.Verified[0].Title, decoded.Publications.Verified[0].Title)
	assert.Equal(t, fixture.Education.MedicalSchool, decoded.Education.MedicalSchool)
	assert.True(t, fixture.GeneratedAt.Equal(decoded.GeneratedAt))
}

func TestExportWorkbookSheetsAndCells(t *testing.T) {
	fixture := exportFixture()

	var buf bytes.Buffer
	require.NoError(t, ExportWorkbook(&buf, fixture))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{sheetOverview, sheetPayments, sheetPublications, sheetEducation},
		f.GetSheetList(),
	)

	input, err := f.GetCellValue(sheetOverview, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Evan Joyce, MD", input)

	name, err := f.GetCellValue(sheetOverview, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Evan Joyce", name)

	header, err := f.GetCellValue(sheetPayments, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Organization", header)

	firstOrg, err := f.GetCellValue(sheetPayments, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Penumbra Inc", firstOrg)

	pubTitle, err := f.GetCellValue(sheetPublications, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Endovascular thrombectomy outcomes", pubTitle)

	school, err := f.GetCellValue(sheetEducation, "B2")
	require.NoError(t, err)
	assert.Equal(t, "University of Utah School of Medicine", school)
}

func TestExportWorkbookUnresolvedShowsDiagnostics(t *testing.T) {
	fixture := Dossier{
		Input:    "Jane Roe",
		Name:     identity.NormalizedName{First: "Jane", Last: "Roe", Full: "Jane Roe"},
		Identity: identity.Resolution{Diagnostic: "no registry matches"},
		Payments: payments.Summary{Diagnostic: "payments_store unavailable: store down"},
		Publications: publications.Set{
			Diagnostic: "literature_index unavailable: all strategies failed",
		},
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, ExportWorkbook(&buf, fixture))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	resolved, err := f.GetCellValue(sheetOverview, "B5")
	require.NoError(t, err)
	assert.Equal(t, "no", resolved)

	diag, err := f.GetCellValue(sheetOverview, "B6")
	require.NoError(t, err)
	assert.Equal(t, "no registry matches", diag)
}
