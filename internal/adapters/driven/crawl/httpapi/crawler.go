// Package httpapi provides a page fetcher backed by an HTTP crawl provider.
//
// Crawl and search APIs disagree on payload shape: the page array and the
// content field travel under different names per provider. This adapter
// normalises all known shapes at the boundary so the ingestion pipeline
// only ever sees strict CrawledPage records.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

// Ensure PageFetcher implements the interface.
var _ driven.PageFetcher = (*PageFetcher)(nil)

// Default configuration values.
const (
	DefaultPageLimit         = 25
	DefaultRequestsPerSecond = 1.0
	DefaultFetchTimeout      = 60 * time.Second
)

// Config holds configuration for the crawl provider client.
type Config struct {
	// APIKey authenticates against the provider (required).
	APIKey string

	// Endpoint is the full URL requests are posted to (required).
	Endpoint string

	// PageLimit caps how many pages the provider returns per source
	// (default: 25).
	PageLimit int

	// RequestsPerSecond paces outgoing calls (default: 1).
	RequestsPerSecond float64

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration
}

// PageFetcher retrieves extracted pages from an HTTP crawl provider.
type PageFetcher struct {
	client    *http.Client
	endpoint  string
	apiKey    string
	pageLimit int
	limiter   *rate.Limiter
}

// fetchRequest is the provider request format.
type fetchRequest struct {
	URL   string `json:"url"`
	Limit int    `json:"limit"`
}

// NewPageFetcher creates a new crawl provider client.
func NewPageFetcher(cfg Config) (*PageFetcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("crawl: API key is required")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("crawl: endpoint is required")
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultPageLimit
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultFetchTimeout
	}

	return &PageFetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		pageLimit: cfg.PageLimit,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// FetchPages retrieves the extracted pages for a source URL. Zero pages
// with nil error means the provider found nothing indexable; failures
// wrap domain.ErrCrawlUnavailable so the orchestrator can attribute them
// to the source.
func (f *PageFetcher) FetchPages(ctx context.Context, url string) ([]domain.CrawledPage, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(fetchRequest{URL: url, Limit: f.pageLimit})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", domain.ErrCrawlUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrCrawlUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			return nil, fmt.Errorf("%w: rate limited, retry after %ss", domain.ErrCrawlUnavailable, retryAfter)
		}
		return nil, fmt.Errorf("%w: rate limited", domain.ErrCrawlUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrCrawlUnavailable, resp.StatusCode, string(body))
	}

	return parseProviderResponse(body)
}

// providerPage is one page row as providers shape it. Every known field
// spelling is declared; the selection order lives in text and pageURL.
type providerPage struct {
	URL        string `json:"url"`
	Link       string `json:"link"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	Content    string `json:"content"`
	RawContent string `json:"raw_content"`
	Snippet    string `json:"snippet"`
}

// providerResponse covers the envelope variants: the page array arrives
// under results, pages, or data depending on the provider.
type providerResponse struct {
	Results []providerPage `json:"results"`
	Pages   []providerPage `json:"pages"`
	Data    []providerPage `json:"data"`
}

// parseProviderResponse normalises a provider payload into CrawledPage
// records. An empty page array is a valid response, not an error.
func parseProviderResponse(body []byte) ([]domain.CrawledPage, error) {
	var resp providerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	rows := resp.Results
	if len(rows) == 0 {
		rows = resp.Pages
	}
	if len(rows) == 0 {
		rows = resp.Data
	}

	pages := make([]domain.CrawledPage, 0, len(rows))
	for _, row := range rows {
		pages = append(pages, domain.CrawledPage{
			URL:   row.pageURL(),
			Title: row.Title,
			Text:  row.text(),
		})
	}
	return pages, nil
}

// text picks the first populated content field, richest first.
func (p providerPage) text() string {
	for _, candidate := range []string{p.Text, p.Content, p.RawContent, p.Snippet} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// pageURL prefers url, falling back to link.
func (p providerPage) pageURL() string {
	if p.URL != "" {
		return p.URL
	}
	return p.Link
}
