// Package earthfeed holds the records shared by the scrape stage packages.
package earthfeed

// Columns is the artifact column order.
var Columns = []string{"Source", "Published", "Title", "Link", "Content"}

// Article is one scraped feed entry as written to the batch artifact.
type Article struct {
	// Source is the configured feed name.
	Source string `json:"source" yaml:"source"`
	// Published is the normalized publish date, or the fallback text when
	// the feed date could not be parsed.
	Published string `json:"published" yaml:"published"`
	Title     string `json:"title" yaml:"title"`
	Link      string `json:"link" yaml:"link"`
	// Content is the extracted body text. It is empty when the page could
	// not be fetched and the unsupported placeholder when no rule exists
	// for the publisher.
	Content string `json:"content" yaml:"content"`
}

// Record returns the article's fields in Columns order.
func (a Article) Record() []string {
	return []string{a.Source, a.Published, a.Title, a.Link, a.Content}
}

// Feed is one configured syndication feed.
type Feed struct {
	// Name is recorded as the Source of every article read from the feed.
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}
