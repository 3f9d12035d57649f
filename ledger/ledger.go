// Package ledger keeps the durable set of article URLs that have already
// been scraped, so re-runs never emit the same article twice.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Store is the persistence behind a Ledger. Load returns every recorded
// URL (an absent ledger is an empty slice, not an error). Append durably
// records one URL; appending a URL that is already present is a no-op.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Append(ctx context.Context, url string) error
}

// Ledger is the in-memory view of a Store, loaded once per run. It only
// grows. It is not safe for concurrent use.
type Ledger struct {
	store Store
	seen  map[string]struct{}
}

// Open loads the ledger from store.
func Open(ctx context.Context, store Store) (*Ledger, error) {
	urls, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	l := &Ledger{
		store: store,
		seen:  make(map[string]struct{}, len(urls)),
	}
	for _, u := range urls {
		l.seen[u] = struct{}{}
	}
	return l, nil
}

// Contains reports whether url has already been scraped.
func (l *Ledger) Contains(url string) bool {
	_, ok := l.seen[url]
	return ok
}

// Add persists url and then marks it as seen. A persistence failure leaves
// the in-memory view untouched and is returned to the caller.
func (l *Ledger) Add(ctx context.Context, url string) error {
	if l.Contains(url) {
		return nil
	}
	if err := l.store.Append(ctx, url); err != nil {
		return fmt.Errorf("failed to record %s in ledger: %w", url, err)
	}
	l.seen[url] = struct{}{}
	return nil
}

// Len returns the number of recorded URLs.
func (l *Ledger) Len() int {
	return len(l.seen)
}

// URLs returns the recorded URLs in lexical order.
func (l *Ledger) URLs() []string {
	urls := make([]string, 0, len(l.seen))
	for u := range l.seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// parseLines splits a newline-joined ledger blob, dropping blank lines and
// duplicates while keeping first-seen order.
func parseLines(data string) []string {
	var urls []string
	seen := map[string]struct{}{}
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		urls = append(urls, line)
	}
	return urls
}

// joinLines is the inverse of parseLines.
func joinLines(urls []string) string {
	return strings.Join(urls, "\n")
}

func containsURL(urls []string, url string) bool {
	for _, u := range urls {
		if u == url {
			return true
		}
	}
	return false
}
