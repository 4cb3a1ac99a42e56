// Package pipeline wires the real pipeline components together - in-memory
// payments store, httptest collaborators, real handler, full middleware
// chain - and drives them through the HTTP surface.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/audit"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/dossier"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/dossier/handler"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/enrichment"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/litindex/pubmed"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/payments"
	memorystore "github.com/stinkypony1968-a11y/physician-dossier/internal/payments/store/memory"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/publications"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/refdata"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/registry/npi"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/middleware/auth"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/middleware/logging"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/middleware/metadata"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/middleware/requestid"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/middleware/requesttime"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/sentinel"
)

const signingKey = "pipeline-test-signing-key"

type harness struct {
	router    chi.Router
	sink      *audit.MemorySink
	publisher *audit.Publisher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := httptest.NewServer(http.HandlerFunc(serveRegistry))
	t.Cleanup(registry.Close)
	index := httptest.NewServer(http.HandlerFunc(serveIndex))
	t.Cleanup(index.Close)

	store := memorystore.New(
		memorystore.Record{
			ExternalID: "1396882474", FirstName: "EVAN", LastName: "JOYCE",
			Specialty: "Neurological Surgery", City: "BOISE", State: "ID",
			Organization: "Penumbra Inc", Amount: decimal.RequireFromString("1250.50"),
			Count: 4, ProgramYear: 2023,
		},
		memorystore.Record{
			ExternalID: "1396882474", FirstName: "EVAN", LastName: "JOYCE",
			Specialty: "Neurological Surgery", City: "BOISE", State: "ID",
			Organization: "J&J/Cerenovus", Amount: decimal.RequireFromString("310.00"),
			Count: 2, ProgramYear: 2023,
		},
		memorystore.Record{
			ExternalID: "1740283055", FirstName: "MARGARET", LastName: "JOYCE",
			Specialty: "Family Medicine", City: "TAMPA", State: "FL",
			Organization: "Pfizer Inc", Amount: decimal.RequireFromString("45.00"),
			Count: 1, ProgramYear: 2023,
		},
	)

	tables := refdata.Default()
	sink := audit.NewMemorySink()
	publisher := audit.NewPublisher([]audit.Sink{sink}, logger)
	t.Cleanup(func() { _ = publisher.Close(context.Background()) })

	service := dossier.NewService(
		identity.NewNormalizer(tables.TitlePrefixes, tables.CredentialSuffixes),
		identity.NewResolver(store, npi.New(registry.URL+"/", 5*time.Second), tables.TargetSpecialties, logger),
		payments.NewAggregator(store, tables.DesignatedOrg, logger),
		publications.NewMatcher(pubmed.New(index.URL+"/", 5*time.Second), publications.TablesFrom(tables), logger),
		enrichment.NewEnricher(absentFetcher{}, tables.SocietyRules, logger),
		publisher,
		nil,
		logger,
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(logging.Middleware(logger, nil))

	h := handler.New(service, logger)
	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.RequireBearer(auth.NewValidator(signingKey), logger))
		h.Register(r)
	})

	return &harness{router: r, sink: sink, publisher: publisher}
}

func (h *harness) post(t *testing.T, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/dossiers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func mintToken(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	require.NoError(t, err)
	return token
}

// absentFetcher makes every directory page look missing, so enrichment runs
// its full path but contributes inferred memberships only.
type absentFetcher struct{}

func (absentFetcher) Page(_ context.Context, pageURL string) (string, error) {
	return "", fmt.Errorf("directory page %s: %w", pageURL, sentinel.ErrNotFound)
}

func TestBuildDossierIntegration_PaymentsDirect(t *testing.T) {
	h := newHarness(t)

	rec := h.post(t, `{"name":"Dr. Evan Joyce, MD","state":"ID"}`, mintToken(t, "analyst@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.BuildResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Dr. Evan Joyce, MD", resp.Input)
	assert.Equal(t, "Evan", resp.Name.First)
	assert.Equal(t, "Joyce", resp.Name.Last)

	require.True(t, resp.Identity.Found)
	assert.Equal(t, identity.SourcePayments, resp.Identity.Source)
	assert.Equal(t, "1396882474", resp.Identity.Best.ExternalID)
	assert.Equal(t, "Neurological Surgery", resp.Identity.Best.Specialty)
	assert.Equal(t, "BOISE", resp.Identity.Best.Location.City)
	// Direct-store hits carry no enumeration date, so no practice years.
	assert.Zero(t, resp.Identity.YearsInPractice)

	require.True(t, resp.Payments.Found)
	require.Len(t, resp.Payments.Counterparties, 2)
	assert.True(t, resp.Payments.DesignatedTotal.Equal(decimal.RequireFromString("310.00")),
		"designated total %s", resp.Payments.DesignatedTotal)
	assert.True(t, resp.Payments.CompetitorTotal.Equal(decimal.RequireFromString("1250.50")),
		"competitor total %s", resp.Payments.CompetitorTotal)

	require.True(t, resp.Publications.Found)
	assert.Equal(t, 2, resp.Publications.TotalHits)
	require.Len(t, resp.Publications.Verified, 1)
	verified := resp.Publications.Verified[0]
	assert.Equal(t, "55501001", verified.ID)
	assert.Equal(t, publications.TierHigh, verified.Tier)
	assert.GreaterOrEqual(t, verified.MatchScore, 50)
	assert.Contains(t, verified.MatchReasons, "City: BOISE")
	require.Len(t, resp.Publications.Unverified, 1)
	assert.Equal(t, publications.TierLow, resp.Publications.Unverified[0].Tier)

	assert.False(t, resp.Education.Found)
	require.Len(t, resp.Education.Memberships, 2)
	assert.Equal(t, "American Association of Neurological Surgeons (AANS)", resp.Education.Memberships[0].Name)
	assert.True(t, resp.Education.Memberships[0].Inferred)

	require.NoError(t, h.publisher.Close(context.Background()))
	requested := h.sink.ByAction(audit.ActionDossierRequested)
	require.Len(t, requested, 1)
	assert.Equal(t, "analyst@example.com", requested[0].Attrs["caller"])
	built := h.sink.ByAction(audit.ActionDossierBuilt)
	require.Len(t, built, 1)
	assert.Equal(t, "npi:1396882474", built[0].Subject)
	assert.Empty(t, h.sink.ByAction(audit.ActionCollaboratorFailed))
}

func TestBuildDossierIntegration_RegistryFallback(t *testing.T) {
	h := newHarness(t)

	rec := h.post(t, `{"name":"Dr. Sarah Chen MD","state":"WA"}`, mintToken(t, "analyst@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.BuildResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.True(t, resp.Identity.Found)
	assert.Equal(t, identity.SourceRegistry, resp.Identity.Source)
	assert.Equal(t, "1780694532", resp.Identity.Best.ExternalID)
	assert.Equal(t, "2016-04-11", resp.Identity.Best.EnumerationDate)
	assert.GreaterOrEqual(t, resp.Identity.YearsInPractice, 9)

	// No disclosure rows and no indexed publications for this identity.
	assert.False(t, resp.Payments.Found)
	assert.False(t, resp.Publications.Found)
}

func TestBuildDossierIntegration_RequiresToken(t *testing.T) {
	h := newHarness(t)

	rec := h.post(t, `{"name":"Evan Joyce"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func serveRegistry(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "application/json")
	if strings.EqualFold(q.Get("first_name"), "Sarah") && strings.EqualFold(q.Get("last_name"), "Chen") {
		fmt.Fprint(w, `{
			"result_count": 1,
			"results": [{
				"number": 1780694532,
				"basic": {"first_name": "SARAH", "last_name": "CHEN", "credential": "M.D.", "enumeration_date": "2016-04-11"},
				"addresses": [{"address_purpose": "LOCATION", "city": "SEATTLE", "state": "WA"}],
				"taxonomies": [{"desc": "Neurological Surgery", "primary": true, "state": "WA", "license": "WA-60311"}]
			}]
		}`)
		return
	}
	fmt.Fprint(w, `{"result_count": 0, "results": []}`)
}

func serveIndex(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "esearch.fcgi"):
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(strings.ToLower(r.URL.Query().Get("term")), "joyce") {
			fmt.Fprint(w, `{"esearchresult": {"count": "2", "idlist": ["55501001", "55501002"]}}`)
			return
		}
		fmt.Fprint(w, `{"esearchresult": {"count": "0", "idlist": []}}`)
	case strings.HasSuffix(r.URL.Path, "efetch.fcgi"):
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprint(w, `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>55501001</PMID>
      <Article>
        <ArticleTitle>Endovascular thrombectomy outcomes in posterior circulation stroke</ArticleTitle>
        <Journal>
          <Title>Journal of NeuroInterventional Surgery</Title>
          <JournalIssue><PubDate><Year>2023</Year></PubDate></JournalIssue>
        </Journal>
        <AuthorList>
          <Author>
            <LastName>Joyce</LastName>
            <ForeName>Evan</ForeName>
            <Initials>E</Initials>
            <AffiliationInfo><Affiliation>Department of Neurosurgery, St. Luke's Health System, Boise, Idaho, USA</Affiliation></AffiliationInfo>
          </Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>55501002</PMID>
      <Article>
        <ArticleTitle>Inhaled corticosteroid adherence in pediatric asthma</ArticleTitle>
        <Journal>
          <Title>Pediatric Pulmonology</Title>
          <JournalIssue><PubDate><Year>2018</Year></PubDate></JournalIssue>
        </Journal>
        <AuthorList>
          <Author>
            <LastName>Joyce</LastName>
            <ForeName>Christopher</ForeName>
            <Initials>C</Initials>
            <AffiliationInfo><Affiliation>Department of Paediatrics, Trinity College Dublin, Ireland</Affiliation></AffiliationInfo>
          </Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`)
	default:
		http.NotFound(w, r)
	}
}
