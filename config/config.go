// Package config resolves the scrape stage configuration from defaults, an
// optional YAML file and EARTHFEED_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pevans/earthfeed"
	"github.com/pevans/earthfeed/artifact"
	"github.com/pevans/earthfeed/extract"
	"github.com/pevans/earthfeed/fetch"
	"github.com/pevans/earthfeed/ledger"
	"github.com/pevans/earthfeed/pubdate"
	"github.com/pevans/earthfeed/scrape"
)

// Ledger backends.
const (
	BackendS3     = "s3"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Artifact sinks.
const (
	SinkS3  = "s3"
	SinkDir = "dir"
)

var (
	// ErrNoFeeds is returned when no feed is configured.
	ErrNoFeeds = errors.New("no feeds configured")
	// ErrUnknownBackend is returned for an unsupported ledger backend.
	ErrUnknownBackend = errors.New("unknown ledger backend")
	// ErrUnknownSink is returned for an unsupported artifact sink.
	ErrUnknownSink = errors.New("unknown artifact sink")
)

// DefaultFeeds are the environmental news feeds of the deployment.
var DefaultFeeds = []earthfeed.Feed{
	{Name: "The Guardian", URL: "https://www.theguardian.com/us/environment/rss"},
	{Name: "BBC News", URL: "https://feeds.bbci.co.uk/news/science_and_environment/rss.xml"},
	{Name: "Grist", URL: "https://grist.org/feed/"},
	{Name: "Earth911", URL: "https://earth911.com/feed/"},
	{Name: "Columbia Climate School", URL: "https://news.climate.columbia.edu/feed/"},
	{Name: "The Independent", URL: "https://www.independent.co.uk/climate-change/news/rss"},
	{Name: "Yale Environment 360", URL: "https://e360.yale.edu/feed.xml"},
	{Name: "Greenpeace", URL: "https://www.greenpeace.org/canada/en/feed/"},
}

// S3Config locates the bucket shared by the ledger and the artifacts.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// LedgerConfig selects and configures the deduplication ledger.
type LedgerConfig struct {
	Backend string `yaml:"backend"`
	// Key is the ledger object key for the s3 backend.
	Key string `yaml:"key"`
	// Conditional enables conditional overwrites of the s3 ledger object.
	Conditional bool `yaml:"conditional"`
	// Path is the ledger file for the file backend or the database for
	// the sqlite backend.
	Path  string      `yaml:"path"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis ledger backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// ArtifactConfig selects where batch artifacts go.
type ArtifactConfig struct {
	Sink   string `yaml:"sink"`
	Prefix string `yaml:"prefix"`
	// Dir is the output directory for the dir sink.
	Dir string `yaml:"dir"`
}

// Config is the resolved scrape stage configuration.
type Config struct {
	Feeds        []earthfeed.Feed `yaml:"feeds"`
	MaxPerFeed   int              `yaml:"max_per_feed"`
	Timezone     string           `yaml:"timezone"`
	FetchTimeout time.Duration    `yaml:"fetch_timeout"`
	UserAgent    string           `yaml:"user_agent"`
	LogLevel     string           `yaml:"log_level"`
	LogFormat    string           `yaml:"log_format"`
	S3           S3Config         `yaml:"s3"`
	Ledger       LedgerConfig     `yaml:"ledger"`
	Artifact     ArtifactConfig   `yaml:"artifact"`
	// Publishers adds or replaces extraction rules by host.
	Publishers map[string]extract.Rule `yaml:"publishers"`
}

// Default returns the configuration of the original deployment.
func Default() *Config {
	return &Config{
		Feeds:        append([]earthfeed.Feed(nil), DefaultFeeds...),
		MaxPerFeed:   scrape.DefaultMaxPerFeed,
		Timezone:     pubdate.DefaultZone,
		FetchTimeout: fetch.DefaultTimeout,
		UserAgent:    fetch.DefaultUserAgent,
		LogLevel:     "info",
		LogFormat:    "text",
		S3: S3Config{
			Bucket: "state-of-the-earth",
		},
		Ledger: LedgerConfig{
			Backend:     BackendS3,
			Key:         ledger.DefaultObjectKey,
			Conditional: true,
			Path:        "scraped_urls.txt",
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  ledger.DefaultRedisKey,
			},
		},
		Artifact: ArtifactConfig{
			Sink:   SinkS3,
			Prefix: artifact.DefaultPrefix,
			Dir:    "out",
		},
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if len(c.Feeds) == 0 {
		return ErrNoFeeds
	}
	for i, f := range c.Feeds {
		if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.URL) == "" {
			return fmt.Errorf("feed %d: name and url are required", i)
		}
	}
	if c.MaxPerFeed < 0 {
		return fmt.Errorf("max_per_feed must not be negative, got %d", c.MaxPerFeed)
	}

	switch c.Ledger.Backend {
	case BackendS3, BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Ledger.Backend)
	}
	switch c.Artifact.Sink {
	case SinkS3, SinkDir:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSink, c.Artifact.Sink)
	}

	for host, rule := range c.Publishers {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("publisher %s: %w", host, err)
		}
	}

	if (c.Ledger.Backend == BackendS3 || c.Artifact.Sink == SinkS3) && c.S3.Bucket == "" {
		return errors.New("s3 bucket is required")
	}
	if (c.Ledger.Backend == BackendFile || c.Ledger.Backend == BackendSQLite) && c.Ledger.Path == "" {
		return fmt.Errorf("ledger path is required for the %s backend", c.Ledger.Backend)
	}
	return nil
}
