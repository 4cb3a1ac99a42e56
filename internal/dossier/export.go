package dossier

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/enrichment"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/payments"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/publications"
)

const (
	sheetOverview     = "Overview"
	sheetPayments     = "Payments"
	sheetPublications = "Publications"
	sheetEducation    = "Education"
)

// ExportJSON writes the dossier as indented JSON.
func ExportJSON(w io.Writer, d Dossier) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// ExportWorkbook writes the dossier as an XLSX workbook with Overview,
// Payments, Publications, and Education sheets.
func ExportWorkbook(w io.Writer, d Dossier) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetOverview); err != nil {
		return fmt.Errorf("name overview sheet: %w", err)
	}
	for _, name := range []string{sheetPayments, sheetPublications, sheetEducation} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	fillOverview(f, d)
	fillPayments(f, headerStyle, d.Payments)
	fillPublications(f, headerStyle, d.Publications)
	fillEducation(f, d.Education)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func fillOverview(f *excelize.File, d Dossier) {
	rows := [][2]string{
		{"Input", d.Input},
		{"Normalized name", d.Name.Full},
		{"Generated at", d.GeneratedAt.Format(time.RFC3339)},
		{"", ""},
		{"Identity resolved", yesNo(d.Identity.Found)},
	}

	if d.Identity.Found {
		best := d.Identity.Best
		rows = append(rows,
			[2]string{"Source", string(d.Identity.Source)},
			[2]string{"External ID", best.ExternalID},
			[2]string{"Display name", best.DisplayName},
			[2]string{"Specialty", best.Specialty},
			[2]string{"Location", locationLine(best.Location.City, best.Location.State)},
		)
	} else if d.Identity.Diagnostic != "" {
		rows = append(rows, [2]string{"Identity diagnostic", d.Identity.Diagnostic})
	}

	rows = append(rows,
		[2]string{"", ""},
		[2]string{"Payments found", yesNo(d.Payments.Found)},
		[2]string{"Competitor total", d.Payments.CompetitorTotal.StringFixed(2)},
		[2]string{"Designated total", d.Payments.DesignatedTotal.StringFixed(2)},
		[2]string{"Publications found", yesNo(d.Publications.Found)},
		[2]string{"Verified publications", fmt.Sprintf("%d", len(d.Publications.Verified))},
		[2]string{"Unverified publications", fmt.Sprintf("%d", len(d.Publications.Unverified))},
		[2]string{"Education found", yesNo(d.Education.Found)},
	)

	for i, row := range rows {
		f.SetCellValue(sheetOverview, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheetOverview, fmt.Sprintf("B%d", i+1), row[1])
	}
	f.SetColWidth(sheetOverview, "A", "A", 24)
	f.SetColWidth(sheetOverview, "B", "B", 48)
}

func fillPayments(f *excelize.File, headerStyle int, summary payments.Summary) {
	writeHeaders(f, sheetPayments, headerStyle, []string{
		"Organization", "Total Amount", "Payment Count", "Designated",
	})

	row := 2
	for _, total := range summary.Counterparties {
		f.SetCellValue(sheetPayments, fmt.Sprintf("A%d", row), total.Organization)
		f.SetCellValue(sheetPayments, fmt.Sprintf("B%d", row), total.TotalAmount.InexactFloat64())
		f.SetCellValue(sheetPayments, fmt.Sprintf("C%d", row), total.TotalCount)
		f.SetCellValue(sheetPayments, fmt.Sprintf("D%d", row), yesNo(total.Designated))
		row++
	}

	row++
	f.SetCellValue(sheetPayments, fmt.Sprintf("A%d", row), "Competitor total")
	f.SetCellValue(sheetPayments, fmt.Sprintf("B%d", row), summary.CompetitorTotal.InexactFloat64())
	row++
	f.SetCellValue(sheetPayments, fmt.Sprintf("A%d", row), "Designated total")
	f.SetCellValue(sheetPayments, fmt.Sprintf("B%d", row), summary.DesignatedTotal.InexactFloat64())

	if !summary.Found && summary.Diagnostic != "" {
		row += 2
		f.SetCellValue(sheetPayments, fmt.Sprintf("A%d", row), "Diagnostic")
		f.SetCellValue(sheetPayments, fmt.Sprintf("B%d", row), summary.Diagnostic)
	}
}

func fillPublications(f *excelize.File, headerStyle int, set publications.Set) {
	writeHeaders(f, sheetPublications, headerStyle, []string{
		"ID", "Title", "Journal", "Year", "Tier", "Score", "Authors", "Matched Affiliation",
	})

	row := 2
	for _, c := range append(append([]publications.Candidate{}, set.Verified...), set.Unverified...) {
		f.SetCellValue(sheetPublications, fmt.Sprintf("A%d", row), c.ID)
		f.SetCellValue(sheetPublications, fmt.Sprintf("B%d", row), c.Title)
		f.SetCellValue(sheetPublications, fmt.Sprintf("C%d", row), c.Journal)
		if c.Year > 0 {
			f.SetCellValue(sheetPublications, fmt.Sprintf("D%d", row), c.Year)
		}
		f.SetCellValue(sheetPublications, fmt.Sprintf("E%d", row), string(c.Tier))
		f.SetCellValue(sheetPublications, fmt.Sprintf("F%d", row), c.MatchScore)
		f.SetCellValue(sheetPublications, fmt.Sprintf("G%d", row), strings.Join(c.Authors, "; "))
		f.SetCellValue(sheetPublications, fmt.Sprintf("H%d", row), c.TargetAuthorAffiliation)
		row++
	}

	if !set.Found && set.Diagnostic != "" {
		row++
		f.SetCellValue(sheetPublications, fmt.Sprintf("A%d", row), "Diagnostic")
		f.SetCellValue(sheetPublications, fmt.Sprintf("B%d", row), set.Diagnostic)
	}

	f.SetColWidth(sheetPublications, "B", "B", 60)
	f.SetColWidth(sheetPublications, "G", "H", 40)
}

func fillEducation(f *excelize.File, profile enrichment.Profile) {
	certifications := make([]string, 0, len(profile.Certifications))
	for _, c := range profile.Certifications {
		certifications = append(certifications, fmt.Sprintf("%s (%s)", c.Name, c.Source))
	}
	memberships := make([]string, 0, len(profile.Memberships))
	for _, m := range profile.Memberships {
		name := m.Name
		if m.Inferred {
			name += " (inferred)"
		}
		memberships = append(memberships, name)
	}

	rows := [][2]string{
		{"Profile found", yesNo(profile.Found)},
		{"Medical school", profile.MedicalSchool},
		{"Graduation year", profile.GraduationYear},
		{"Residencies", strings.Join(profile.Residencies, "; ")},
		{"Fellowships", strings.Join(profile.Fellowships, "; ")},
		{"Certifications", strings.Join(certifications, "; ")},
		{"Memberships", strings.Join(memberships, "; ")},
		{"Sources", strings.Join(profile.Sources, "; ")},
		{"Profile URL", profile.ProfileURL},
	}
	if profile.Diagnostic != "" {
		rows = append(rows, [2]string{"Diagnostic", profile.Diagnostic})
	}

	for i, row := range rows {
		f.SetCellValue(sheetEducation, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheetEducation, fmt.Sprintf("B%d", i+1), row[1])
	}
	f.SetColWidth(sheetEducation, "A", "A", 20)
	f.SetColWidth(sheetEducation, "B", "B", 70)
}

func writeHeaders(f *excelize.File, sheet string, style int, headers []string) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, style)
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 18)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func locationLine(city, state string) string {
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}
