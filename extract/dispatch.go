package extract

import (
	"bytes"
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/earthfeed/logging"
)

// UnsupportedContent is the article content recorded when no rule exists
// for the article's host.
const UnsupportedContent = "Content parsing not supported."

// PageFetcher retrieves a page body. *fetch.Fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Dispatcher routes an article URL to its publisher strategy.
type Dispatcher struct {
	registry *Registry
	fetcher  PageFetcher
	log      *logging.Logger
}

// NewDispatcher creates a dispatcher. A nil logger discards output.
func NewDispatcher(registry *Registry, fetcher PageFetcher, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Discard()
	}
	return &Dispatcher{registry: registry, fetcher: fetcher, log: log}
}

// ExtractContent returns the article body at rawURL. Unknown publishers
// (and unparsable URLs) yield UnsupportedContent without a fetch; fetch or
// parse failures yield an empty string. It never fails.
func (d *Dispatcher) ExtractContent(ctx context.Context, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		d.log.Warn("article url has no host", "url", rawURL)
		return UnsupportedContent
	}

	strategy, ok := d.registry.Resolve(u.Host)
	if !ok {
		d.log.Debug("no extractor for host", "host", u.Host, "url", rawURL)
		return UnsupportedContent
	}

	body, err := d.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		d.log.Warn("article fetch failed", "url", rawURL, "error", err)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		d.log.Warn("article html parse failed", "url", rawURL, "error", err)
		return ""
	}

	content := strategy.Extract(doc)
	if content == "" {
		d.log.Debug("extractor found no content", "host", u.Host, "url", rawURL)
	}
	return content
}
