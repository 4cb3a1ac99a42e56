package enrichment

import (
	"net/url"
	"strings"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
)

// source describes one public directory: how to build candidate profile URLs
// for a name and how to read the returned page. Sources are tried in order;
// the most detailed directory goes first.
type source struct {
	name  string
	urls  func(first, last string, hint identity.Hint) []string
	parse func(html string) extract
}

func defaultSources() []source {
	return []source{
		{
			name: "Healthgrades",
			urls: func(first, last string, hint identity.Hint) []string {
				slug := strings.ToLower(first) + "-" + strings.ToLower(last)
				urls := []string{"https://www.healthgrades.com/physician/dr-" + slug}
				if hint.State != "" {
					// State-qualified slugs disambiguate common names; try first.
					urls = append(
						[]string{"https://www.healthgrades.com/physician/dr-" + slug + "-" + strings.ToLower(hint.State)},
						urls...,
					)
				}
				return urls
			},
			parse: parseEducationPage,
		},
		{
			name: "WebMD",
			urls: func(first, last string, hint identity.Hint) []string {
				u := "https://doctor.webmd.com/results?q=" + url.QueryEscape(first+" "+last)
				if hint.City != "" {
					u += "&loc=" + url.QueryEscape(hint.City)
				}
				return []string{u}
			},
			parse: parseSearchResultPage,
		},
		{
			name: "Doximity",
			urls: func(first, last string, hint identity.Hint) []string {
				return []string{"https://www.doximity.com/pub/" + strings.ToLower(first) + "-" + strings.ToLower(last)}
			},
			parse: parsePublicProfilePage,
		},
	}
}
