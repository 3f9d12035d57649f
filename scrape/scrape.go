// Package scrape runs one pass over the configured feeds and turns every
// article not seen before into a row of the batch artifact.
package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/earthfeed"
	"github.com/pevans/earthfeed/artifact"
	"github.com/pevans/earthfeed/feeds"
	"github.com/pevans/earthfeed/logging"
)

// DefaultMaxPerFeed caps how many new articles one feed contributes per run.
const DefaultMaxPerFeed = 10

// slowFeed is the per-feed duration above which progress logs at WARN.
const slowFeed = 30 * time.Second

// Ledger is the seen-URL set consulted and extended by a run.
// *ledger.Ledger satisfies it.
type Ledger interface {
	Contains(url string) bool
	Add(ctx context.Context, url string) error
}

// FeedReader returns new candidates from one feed. *feeds.Reader
// satisfies it.
type FeedReader interface {
	Read(ctx context.Context, feedURL string, exclude feeds.Excluder, max int) ([]feeds.Candidate, error)
}

// ContentExtractor returns the body text of an article page. It never
// fails. *extract.Dispatcher satisfies it.
type ContentExtractor interface {
	ExtractContent(ctx context.Context, url string) string
}

// DateNormalizer renders a raw feed date. *pubdate.Normalizer satisfies it.
type DateNormalizer interface {
	Normalize(raw string) string
}

// Runner holds everything one scrape run needs.
type Runner struct {
	Feeds      []earthfeed.Feed
	Ledger     Ledger
	Reader     FeedReader
	Extractor  ContentExtractor
	Normalizer DateNormalizer
	Writer     artifact.Writer
	MaxPerFeed int // Default: DefaultMaxPerFeed
	Logger     *logging.Logger
}

// Result summarizes a completed run.
type Result struct {
	RunID    uuid.UUID
	Articles []earthfeed.Article
	// PerFeed counts new articles by feed name.
	PerFeed map[string]int
	// ArtifactKey is where the batch was written; empty when the run found
	// nothing new.
	ArtifactKey string
}

// Run visits every feed in order, collects the articles not yet in the
// ledger and writes them as one artifact. Each URL is recorded in the
// ledger as soon as its article is collected; a ledger failure aborts the
// run. A feed that cannot be read contributes nothing. An empty batch is a
// successful run that writes no artifact.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:   uuid.New(),
		PerFeed: make(map[string]int, len(r.Feeds)),
	}
	log := r.logger().With("run_id", result.RunID.String())
	log.Info("scrape run starting", "feeds", len(r.Feeds))

	for _, feed := range r.Feeds {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("scrape run interrupted: %w", err)
		}
		if err := r.scrapeFeed(ctx, log, feed, result); err != nil {
			return result, err
		}
	}

	if len(result.Articles) == 0 {
		log.Info("no new articles found")
		return result, nil
	}

	key, err := r.Writer.Write(ctx, result.Articles)
	if err != nil {
		return result, fmt.Errorf("failed to write artifact: %w", err)
	}
	result.ArtifactKey = key

	log.Info("scrape run complete", "articles", len(result.Articles), "artifact", key)
	return result, nil
}

// scrapeFeed collects the new articles of one feed into result.
func (r *Runner) scrapeFeed(ctx context.Context, log *logging.Logger, feed earthfeed.Feed, result *Result) error {
	start := time.Now()
	log = log.With("feed", feed.Name)

	candidates, err := r.Reader.Read(ctx, feed.URL, r.Ledger, r.maxPerFeed())
	if err != nil {
		log.Warn("feed read failed", "url", feed.URL, "error", err)
		return nil
	}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("scrape run interrupted: %w", err)
		}

		// A link collected from an earlier feed in this run is already in
		// the ledger.
		if r.Ledger.Contains(c.Link) {
			continue
		}

		article := earthfeed.Article{
			Source:    feed.Name,
			Published: r.Normalizer.Normalize(c.PublishedRaw),
			Title:     c.Title,
			Link:      c.Link,
			Content:   r.Extractor.ExtractContent(ctx, c.Link),
		}
		result.Articles = append(result.Articles, article)
		result.PerFeed[feed.Name]++

		if err := r.Ledger.Add(ctx, c.Link); err != nil {
			return fmt.Errorf("feed %s: %w", feed.Name, err)
		}
		log.Debug("article collected", "url", c.Link, "content_length", len(article.Content))
	}

	duration := time.Since(start)
	if duration > slowFeed {
		log.Warn("slow feed", "articles", result.PerFeed[feed.Name], "duration", duration)
	} else {
		log.Info("feed scraped", "articles", result.PerFeed[feed.Name], "duration", duration)
	}
	return nil
}

func (r *Runner) maxPerFeed() int {
	if r.MaxPerFeed <= 0 {
		return DefaultMaxPerFeed
	}
	return r.MaxPerFeed
}

func (r *Runner) logger() *logging.Logger {
	if r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}
