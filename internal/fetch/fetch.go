// Package fetch retrieves WorldCat record pages over HTTP and hands them
// to the extractor as parsed documents. Pacing and timeouts live here;
// interpretation of the page does not.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	bibcaterrors "github.com/lepinkainen/bibcat/internal/errors"
	"github.com/lepinkainen/bibcat/internal/ratelimit"
)

// ErrNotFound is returned for a hard HTTP 404. Missing records usually
// come back as 200 with an apology page that the extractor detects, but
// the site has served plain 404s too.
var ErrNotFound = errors.New("record not found")

// maxResponseBytes caps how much of a record page is read.
const maxResponseBytes = 10 * 1024 * 1024

// Fetcher fetches one record page per OCLC identifier.
type Fetcher struct {
	client    *http.Client
	limiter   *ratelimit.Limiter
	baseURL   string
	userAgent string
}

// New creates a Fetcher for the given base URL (e.g.
// "https://www.worldcat.org"), pacing requests at requestsPerSecond.
func New(baseURL, userAgent string, requestsPerSecond float64) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		limiter:   ratelimit.New("worldcat", requestsPerSecond),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

// URL returns the record page URL for an OCLC identifier.
func (f *Fetcher) URL(oclcID int64) string {
	return fmt.Sprintf("%s/oclc/%d", f.baseURL, oclcID)
}

// Fetch retrieves and parses the record page for oclcID. Returns
// ErrNotFound on HTTP 404; any other non-2xx status is an error.
func (f *Fetcher) Fetch(ctx context.Context, oclcID int64) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(oclcID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %d: %w", oclcID, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request for %d failed: %w", oclcID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, bibcaterrors.NewRateLimitError(oclcID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d fetching oclc %d", resp.StatusCode, oclcID)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page for %d: %w", oclcID, err)
	}
	return doc, nil
}
