// Package feeds reads syndication feeds into candidate articles.
package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Candidate is one feed entry that has not been scraped yet.
type Candidate struct {
	Link         string
	Title        string
	PublishedRaw string
}

// Excluder reports links that must not be emitted again. *ledger.Ledger
// satisfies it.
type Excluder interface {
	Contains(link string) bool
}

// Reader fetches and parses RSS or Atom feeds. The gofeed library detects
// the format.
type Reader struct {
	parser *gofeed.Parser
}

// NewReader creates a reader that fetches through client with the given
// User-Agent. A nil client uses gofeed's default.
func NewReader(client *http.Client, userAgent string) *Reader {
	fp := gofeed.NewParser()
	if client != nil {
		fp.Client = client
	}
	if userAgent != "" {
		fp.UserAgent = userAgent
	}
	return &Reader{parser: fp}
}

// Read fetches feedURL and returns up to max new candidates in document
// order. Entries without a link, entries in exclude, and links already
// emitted by this call are skipped without counting toward max. A max of
// zero or less means no cap.
func (r *Reader) Read(ctx context.Context, feedURL string, exclude Excluder, max int) ([]Candidate, error) {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}
	return Candidates(feed, exclude, max), nil
}

// Candidates selects new entries from an already parsed feed.
func Candidates(feed *gofeed.Feed, exclude Excluder, max int) []Candidate {
	var out []Candidate
	emitted := map[string]struct{}{}

	for _, item := range feed.Items {
		if max > 0 && len(out) >= max {
			break
		}
		if item == nil {
			continue
		}

		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		if _, dup := emitted[link]; dup {
			continue
		}
		if exclude != nil && exclude.Contains(link) {
			continue
		}
		emitted[link] = struct{}{}

		out = append(out, Candidate{
			Link:         link,
			Title:        strings.TrimSpace(item.Title),
			PublishedRaw: strings.TrimSpace(item.Published),
		})
	}

	return out
}
