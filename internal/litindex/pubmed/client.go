// Package pubmed queries the public literature index's E-utilities API.
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/publications"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/upstream"
)

const tracerName = "physician-dossier"

// DefaultBaseURL is the public E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"

const (
	searchEndpoint = "esearch.fcgi"
	fetchEndpoint  = "efetch.fcgi"

	database = "pubmed"

	// articleURLFormat links to the public article page, not the API.
	articleURLFormat = "https://pubmed.ncbi.nlm.nih.gov/%s/"
)

// Client implements publications.IndexClient over the index's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search returns matching record ids newest-first plus the index's total hit
// count for the term.
func (c *Client) Search(ctx context.Context, term string, max int) ([]string, int, error) {
	params := url.Values{}
	params.Set("db", database)
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(max))
	params.Set("retmode", "json")
	params.Set("sort", "date")

	status, body, err := c.get(ctx, searchEndpoint, params, "index search")
	if err != nil {
		return nil, 0, err
	}
	return parseSearchResponse(status, body)
}

// FetchDetails returns full records for ids. Records the index no longer
// carries, and records missing an identifier, are omitted.
func (c *Client) FetchDetails(ctx context.Context, ids []string) ([]publications.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("db", database)
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")

	status, body, err := c.get(ctx, fetchEndpoint, params, "detail fetch")
	if err != nil {
		return nil, err
	}
	return parseDetailsResponse(status, body)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, action string) (int, []byte, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "litindex."+strings.TrimSuffix(endpoint, ".fcgi"),
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, nil, upstream.New(upstream.SourceLitIndex, upstream.CategoryInternal, "build "+action+" request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = upstream.Classify(upstream.SourceLitIndex, action, err)
		span.RecordError(err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = upstream.Classify(upstream.SourceLitIndex, "read "+action+" response", err)
		span.RecordError(err)
		return 0, nil, err
	}
	span.SetAttributes(attribute.Int("status", resp.StatusCode))
	return resp.StatusCode, body, nil
}

type searchResponse struct {
	Result searchResult `json:"esearchresult"`
}

type searchResult struct {
	IDList []string `json:"idlist"`
	// The index quotes counts, so this decodes as a string.
	Count string `json:"count"`
}

func parseSearchResponse(status int, body []byte) ([]string, int, error) {
	if status != http.StatusOK {
		return nil, 0, upstream.New(upstream.SourceLitIndex, upstream.CategoryBadResponse,
			fmt.Sprintf("index returned status %d", status), nil)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, 0, upstream.New(upstream.SourceLitIndex, upstream.CategoryBadResponse, "decode search response", err)
	}

	total, err := strconv.Atoi(decoded.Result.Count)
	if err != nil {
		total = 0
	}
	return decoded.Result.IDList, total, nil
}

type articleSet struct {
	Articles []article `xml:"PubmedArticle"`
}

type article struct {
	PMID    string   `xml:"MedlineCitation>PMID"`
	Title   string   `xml:"MedlineCitation>Article>ArticleTitle"`
	Journal string   `xml:"MedlineCitation>Article>Journal>Title"`
	Year    string   `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	Authors []author `xml:"MedlineCitation>Article>AuthorList>Author"`
}

type author struct {
	LastName     string   `xml:"LastName"`
	ForeName     string   `xml:"ForeName"`
	Initials     string   `xml:"Initials"`
	Affiliations []string `xml:"AffiliationInfo>Affiliation"`
}

func parseDetailsResponse(status int, body []byte) ([]publications.Record, error) {
	if status != http.StatusOK {
		return nil, upstream.New(upstream.SourceLitIndex, upstream.CategoryBadResponse,
			fmt.Sprintf("index returned status %d", status), nil)
	}

	var decoded articleSet
	if err := xml.Unmarshal(body, &decoded); err != nil {
		return nil, upstream.New(upstream.SourceLitIndex, upstream.CategoryBadResponse, "decode detail response", err)
	}

	records := make([]publications.Record, 0, len(decoded.Articles))
	for _, a := range decoded.Articles {
		if a.PMID == "" {
			continue
		}
		year, err := strconv.Atoi(a.Year)
		if err != nil {
			year = 0
		}
		record := publications.Record{
			ID:      a.PMID,
			Title:   a.Title,
			Journal: a.Journal,
			Year:    year,
			URL:     fmt.Sprintf(articleURLFormat, a.PMID),
		}
		for _, au := range a.Authors {
			affiliation := ""
			if len(au.Affiliations) > 0 {
				affiliation = au.Affiliations[0]
			}
			record.Authors = append(record.Authors, publications.Author{
				LastName:    au.LastName,
				ForeName:    au.ForeName,
				Initials:    au.Initials,
				Affiliation: affiliation,
			})
		}
		records = append(records, record)
	}
	return records, nil
}
