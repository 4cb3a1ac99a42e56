package enrichment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/upstream"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/sentinel"
)

// DefaultTimeout bounds a single directory page fetch. Directories are slower
// and flakier than the primary collaborators, so this stays short.
const DefaultTimeout = 15 * time.Second

// Directory sites block obvious non-browser agents.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// Fetcher retrieves public directory pages.
type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{httpClient: &http.Client{Timeout: timeout}}
}

// Page returns the body of pageURL, following redirects. A 404 maps to
// sentinel.ErrNotFound so callers can treat a missing profile as an absent
// source rather than a failure.
func (f *Fetcher) Page(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", upstream.New(upstream.SourceDirectory, upstream.CategoryInternal, "build page request", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", upstream.Classify(upstream.SourceDirectory, "fetch directory page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("directory page %s: %w", pageURL, sentinel.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return "", upstream.New(upstream.SourceDirectory, upstream.CategoryBadResponse,
			fmt.Sprintf("directory returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstream.Classify(upstream.SourceDirectory, "read directory page", err)
	}
	return string(body), nil
}
