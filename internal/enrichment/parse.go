package enrichment

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	xstrings "github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/strings"
)

// extract is what a single directory page yields before merging.
type extract struct {
	medicalSchool  string
	graduationYear string
	residencies    []string
	fellowships    []string
	certifications []string
}

func (e extract) empty() bool {
	return e.medicalSchool == "" &&
		len(e.residencies) == 0 &&
		len(e.fellowships) == 0 &&
		len(e.certifications) == 0
}

// Directory pages render education blocks inconsistently, so every field has
// an ordered pattern table: markup forms first, embedded JSON forms next,
// loose text forms last. The first capture that survives validation wins.
var (
	medicalSchoolPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)Medical School:?\s*</[^>]+>\s*([^<]+)`),
		regexp.MustCompile(`(?is)Medical School:?\s*</[^>]+>\s*<[^>]+>\s*([^<]+)`),
		regexp.MustCompile(`(?is)>Medical School:?<[^>]*>\s*<[^>]*>([^<]+)`),
		regexp.MustCompile(`(?is)"medicalSchool"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`(?is)"medical_school"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`(?is)Medical School[:\s]*\n?\s*([A-Z][^<\n]+(?:University|College|School|Medicine)[^<\n]*)`),
		regexp.MustCompile(`(?is)(?:graduated from|attended)\s+([^<,\n]+(?:University|College|School)[^<,\n]*)`),
		regexp.MustCompile(`(?is)<(?:dt|strong|b)[^>]*>Medical School[:\s]*</(?:dt|strong|b)>\s*<(?:dd|span|div)[^>]*>([^<]+)`),
		regexp.MustCompile(`(?is)"alumniOf"[^}]*"name"\s*:\s*"([^"]+)"`),
	}

	graduationYearPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)graduated[^0-9]*(\d{4})`),
		regexp.MustCompile(`(?i)class of (\d{4})`),
		regexp.MustCompile(`(?i)"graduationYear"\s*:\s*"?(\d{4})"?`),
		regexp.MustCompile(`(?i)Medical School[^0-9]*(\d{4})`),
	}

	residencyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)Residency:?\s*</[^>]+>\s*([^<]+)`),
		regexp.MustCompile(`(?is)Residency:?\s*</[^>]+>\s*<[^>]+>\s*([^<]+)`),
		regexp.MustCompile(`(?is)>Residency:?<[^>]*>\s*<[^>]*>([^<]+)`),
		regexp.MustCompile(`(?is)"residency"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`(?is)"residencyProgram"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`(?is)<(?:dt|strong|b)[^>]*>Residency[:\s]*</(?:dt|strong|b)>\s*<(?:dd|span|div)[^>]*>([^<]+)`),
		regexp.MustCompile(`(?is)Residency[:\s]*\n?\s*([A-Z][^<\n]+(?:Hospital|Medical|University|Clinic)[^<\n]*)`),
	}

	fellowshipPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)Fellowship:?\s*</[^>]+>\s*([^<]+)`),
		regexp.MustCompile(`(?is)Fellowship:?\s*</[^>]+>\s*<[^>]+>\s*([^<]+)`),
		regexp.MustCompile(`(?is)>Fellowship:?<[^>]*>\s*<[^>]*>([^<]+)`),
		regexp.MustCompile(`(?is)"fellowship"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`(?is)<(?:dt|strong|b)[^>]*>Fellowship[:\s]*</(?:dt|strong|b)>\s*<(?:dd|span|div)[^>]*>([^<]+)`),
		regexp.MustCompile(`(?is)Fellowship[:\s]*\n?\s*([A-Z][^<\n]+(?:Hospital|Medical|University)[^<\n]*)`),
	}

	certificationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)Board Certifications?:?\s*</[^>]+>\s*([^<]+)`),
		regexp.MustCompile(`(?is)"boardCertification"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`(?is)"certifications"\s*:\s*\[([^\]]+)\]`),
		regexp.MustCompile(`(?is)Certified in ([^<,\n]+)`),
		regexp.MustCompile(`(?is)Board Certified[^<]*in ([^<]+)`),
	}

	// Search-result and public-profile pages carry at most a school mention.
	searchResultSchoolPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Medical School:?\s*([^<\n]+(?:University|College|School)[^<\n]*)`),
		regexp.MustCompile(`(?i)"medicalSchool"\s*:\s*"([^"]+)"`),
	}

	publicProfileSchoolPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)"school"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`(?i)Medical School[:\s]*([^<\n]+)`),
	}
)

var (
	schoolKeywords        = []string{"university", "college", "school", "medicine", "medical"}
	programKeywords       = []string{"hospital", "medical", "university", "clinic", "center", "health"}
	publicProfileKeywords = []string{"university", "college", "school", "medicine"}
)

// parseEducationPage extracts education data from a full directory profile
// page. Returns a zero extract when the page carries no education section at
// all, which is how profile-shaped pages for the wrong person look.
func parseEducationPage(html string) extract {
	var ex extract
	if !strings.Contains(html, "Education") &&
		!strings.Contains(html, "Medical School") &&
		!strings.Contains(html, "Residency") {
		return ex
	}

	// Structured markup first.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		if school := labeledValue(doc, "medical school"); looksLikeSchool(school) {
			ex.medicalSchool = school
		}
		for _, v := range labeledValues(doc, "residency") {
			if looksLikeProgram(v) {
				ex.residencies = append(ex.residencies, v)
			}
		}
		for _, v := range labeledValues(doc, "fellowship") {
			if looksLikeTrainingEntry(v) {
				ex.fellowships = append(ex.fellowships, v)
			}
		}
		for _, v := range labeledValues(doc, "board certification") {
			if looksLikeCertification(v) {
				ex.certifications = append(ex.certifications, v)
			}
		}
	}

	// Regex fallbacks for pages that render these blocks without label markup.
	if ex.medicalSchool == "" {
		ex.medicalSchool = firstMatch(html, medicalSchoolPatterns, looksLikeSchool)
	}
	if ex.medicalSchool != "" {
		ex.graduationYear = firstMatch(html, graduationYearPatterns, plausibleGraduationYear)
	}
	ex.residencies = xstrings.DedupeAndTrimFold(
		append(ex.residencies, allMatches(html, residencyPatterns, looksLikeProgram)...))
	ex.fellowships = xstrings.DedupeAndTrimFold(
		append(ex.fellowships, allMatches(html, fellowshipPatterns, looksLikeTrainingEntry)...))
	ex.certifications = xstrings.DedupeAndTrimFold(
		append(ex.certifications, allMatches(html, certificationPatterns, looksLikeCertification)...))
	return ex
}

// parseSearchResultPage pulls a school mention out of a directory search
// results page, the only education field those pages carry.
func parseSearchResultPage(html string) extract {
	return extract{
		medicalSchool: firstMatch(html, searchResultSchoolPatterns, looksLikeTrainingEntry),
	}
}

// parsePublicProfilePage reads the embedded JSON blob public profile pages ship.
func parsePublicProfilePage(html string) extract {
	return extract{
		medicalSchool: firstMatch(html, publicProfileSchoolPatterns, func(s string) bool {
			return len(s) > 10 && containsAny(s, publicProfileKeywords)
		}),
	}
}

// firstMatch tries patterns in order and returns the first capture that
// survives validation. An invalid capture moves on to the next pattern.
func firstMatch(html string, patterns []*regexp.Regexp, valid func(string) bool) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(html); m != nil {
			if candidate := cleanCapture(m[1]); valid(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// allMatches collects every validated capture across all patterns.
func allMatches(html string, patterns []*regexp.Regexp, valid func(string) bool) []string {
	var out []string
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(html, -1) {
			if candidate := cleanCapture(m[1]); valid(candidate) {
				out = append(out, candidate)
			}
		}
	}
	return out
}

// labeledValue returns the first element text following a dt/strong/b label.
func labeledValue(doc *goquery.Document, label string) string {
	if values := labeledValues(doc, label); len(values) > 0 {
		return values[0]
	}
	return ""
}

func labeledValues(doc *goquery.Document, label string) []string {
	var out []string
	doc.Find("dt, strong, b").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if !strings.HasPrefix(text, label) {
			return
		}
		if value := cleanCapture(s.Next().Text()); value != "" {
			out = append(out, value)
		}
	})
	return out
}

func cleanCapture(s string) string {
	return strings.Trim(xstrings.CollapseWhitespace(s), ",.- ")
}

func containsAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func looksLikeSchool(s string) bool {
	return len(s) > 10 && len(s) < 200 && containsAny(s, schoolKeywords)
}

func looksLikeProgram(s string) bool {
	return len(s) > 10 && len(s) < 200 && containsAny(s, programKeywords)
}

// looksLikeTrainingEntry applies the length gate alone. Fellowship names vary
// too much for a keyword list.
func looksLikeTrainingEntry(s string) bool {
	return len(s) > 10 && len(s) < 200
}

func looksLikeCertification(s string) bool {
	return len(s) > 5 && len(s) < 150
}

func plausibleGraduationYear(s string) bool {
	year, err := strconv.Atoi(s)
	return err == nil && year > 1950 && year < 2030
}
