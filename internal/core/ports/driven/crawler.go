package driven

import (
	"context"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// PageFetcher is the crawl/search provider: given a site URL it returns
// the extracted pages.
//
// Zero pages with nil error is a valid outcome (the site has no
// indexable content) and is distinct from a failed request (rate
// limit, network, auth), which returns an error wrapping
// domain.ErrCrawlUnavailable. The orchestrator relies on that
// distinction for per-source failure attribution.
type PageFetcher interface {
	// FetchPages retrieves extracted pages for a source URL.
	FetchPages(ctx context.Context, url string) ([]domain.CrawledPage, error)
}
