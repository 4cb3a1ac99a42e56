// Package npi queries the national provider registry's public JSON API.
package npi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/upstream"
)

const tracerName = "physician-dossier"

// DefaultBaseURL is the public registry endpoint.
const DefaultBaseURL = "https://npiregistry.cms.hhs.gov/api/"

const (
	apiVersion = "2.1"

	// Individual providers only; organizational records never resolve a person.
	enumerationType = "NPI-1"

	searchLimit = 50
)

// Client implements identity.RegistryClient over the registry's HTTP API.
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

// Search returns raw candidate records for the name, optionally narrowed by
// the hint's state and city.
func (c *Client) Search(ctx context.Context, first, last string, hint identity.Hint) ([]identity.RegistryHit, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "registry.search",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	params := url.Values{}
	params.Set("version", apiVersion)
	params.Set("first_name", first)
	params.Set("last_name", last)
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("enumeration_type", enumerationType)
	if hint.State != "" {
		params.Set("state", hint.State)
	}
	if hint.City != "" {
		params.Set("city", hint.City)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, upstream.New(upstream.SourceRegistry, upstream.CategoryInternal, "build search request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = upstream.Classify(upstream.SourceRegistry, "registry search", err)
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = upstream.Classify(upstream.SourceRegistry, "read search response", err)
		span.RecordError(err)
		return nil, err
	}

	hits, err := parseSearchResponse(resp.StatusCode, body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Number     json.Number `json:"number"`
	Basic      basicInfo   `json:"basic"`
	Addresses  []address   `json:"addresses"`
	Taxonomies []taxonomy  `json:"taxonomies"`
}

type basicInfo struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Credential      string `json:"credential"`
	EnumerationDate string `json:"enumeration_date"`
}

type address struct {
	Purpose          string `json:"address_purpose"`
	City             string `json:"city"`
	State            string `json:"state"`
	OrganizationName string `json:"organization_name"`
}

type taxonomy struct {
	Desc    string `json:"desc"`
	Primary bool   `json:"primary"`
	State   string `json:"state"`
	License string `json:"license"`
}

func parseSearchResponse(status int, body []byte) ([]identity.RegistryHit, error) {
	if status != http.StatusOK {
		return nil, upstream.New(upstream.SourceRegistry, upstream.CategoryBadResponse,
			fmt.Sprintf("registry returned status %d", status), nil)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, upstream.New(upstream.SourceRegistry, upstream.CategoryBadResponse, "decode search response", err)
	}

	hits := make([]identity.RegistryHit, 0, len(decoded.Results))
	for _, result := range decoded.Results {
		practice := practiceAddress(result.Addresses)
		hit := identity.RegistryHit{
			Number:          result.Number.String(),
			FirstName:       result.Basic.FirstName,
			LastName:        result.Basic.LastName,
			Credential:      result.Basic.Credential,
			EnumerationDate: result.Basic.EnumerationDate,
			City:            practice.City,
			State:           practice.State,
			Organization:    practice.OrganizationName,
		}
		for _, tax := range result.Taxonomies {
			if tax.Desc == "" {
				continue
			}
			hit.Specialties = append(hit.Specialties, identity.SpecialtyClaim{
				Description: tax.Desc,
				Primary:     tax.Primary,
				State:       tax.State,
				License:     tax.License,
			})
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// practiceAddress prefers the LOCATION entry, then falls back to the first.
func practiceAddress(addresses []address) address {
	for _, a := range addresses {
		if a.Purpose == "LOCATION" {
			return a
		}
	}
	if len(addresses) > 0 {
		return addresses[0]
	}
	return address{}
}
