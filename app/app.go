// Package app builds a ready-to-run scrape stage from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pevans/earthfeed/artifact"
	"github.com/pevans/earthfeed/config"
	"github.com/pevans/earthfeed/extract"
	"github.com/pevans/earthfeed/feeds"
	"github.com/pevans/earthfeed/fetch"
	"github.com/pevans/earthfeed/ledger"
	"github.com/pevans/earthfeed/logging"
	"github.com/pevans/earthfeed/pubdate"
	"github.com/pevans/earthfeed/scrape"
	"github.com/pevans/earthfeed/storage"
)

// App is a wired scrape stage. Close releases ledger connections.
type App struct {
	Runner  *scrape.Runner
	Logger  *logging.Logger
	closers []io.Closer
}

// NewLogger creates the logger described by cfg, writing to w.
func NewLogger(cfg *config.Config, w io.Writer) *logging.Logger {
	if strings.EqualFold(cfg.LogFormat, "json") {
		return logging.NewJSON(w, cfg.LogLevel)
	}
	return logging.New(w, cfg.LogLevel)
}

// Build wires every component named by cfg. The ledger is loaded here, so
// Build fails when the ledger cannot be read.
func Build(ctx context.Context, cfg *config.Config, log *logging.Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg, os.Stderr)
	}
	a := &App{Logger: log}

	normalizer, err := pubdate.New(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	var bucket *storage.S3
	if cfg.Ledger.Backend == config.BackendS3 || cfg.Artifact.Sink == config.SinkS3 {
		bucket, err = storage.NewS3(ctx, storage.S3Config{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			Profile:      cfg.S3.Profile,
			Endpoint:     cfg.S3.Endpoint,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		log.Debug("object storage configured", "bucket", bucket.Bucket(), "region", cfg.S3.Region)
	}

	store, err := a.ledgerStore(ctx, cfg, bucket)
	if err != nil {
		a.Close()
		return nil, err
	}
	l, err := ledger.Open(ctx, store)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Info("ledger loaded", "backend", cfg.Ledger.Backend, "urls", l.Len())

	writer, err := artifactWriter(cfg, bucket)
	if err != nil {
		a.Close()
		return nil, err
	}

	registry := extract.DefaultRegistry()
	for host, rule := range cfg.Publishers {
		registry.Register(host, rule)
	}

	fetcher := fetch.NewFetcher(cfg.FetchTimeout, fetch.WithUserAgent(cfg.UserAgent))

	a.Runner = &scrape.Runner{
		Feeds:      cfg.Feeds,
		Ledger:     l,
		Reader:     feeds.NewReader(fetcher.Client(), fetcher.UserAgent()),
		Extractor:  extract.NewDispatcher(registry, fetcher, log),
		Normalizer: normalizer,
		Writer:     writer,
		MaxPerFeed: cfg.MaxPerFeed,
		Logger:     log,
	}
	return a, nil
}

func (a *App) ledgerStore(ctx context.Context, cfg *config.Config, bucket *storage.S3) (ledger.Store, error) {
	switch cfg.Ledger.Backend {
	case config.BackendS3:
		return ledger.NewObjectStore(bucket, cfg.Ledger.Key, cfg.Ledger.Conditional), nil
	case config.BackendFile:
		return ledger.NewFileStore(cfg.Ledger.Path)
	case config.BackendSQLite:
		s, err := ledger.NewSQLiteStore(cfg.Ledger.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	case config.BackendRedis:
		s, err := ledger.NewRedisStore(ctx, ledger.RedisConfig{
			Addr:     cfg.Ledger.Redis.Addr,
			Password: cfg.Ledger.Redis.Password,
			DB:       cfg.Ledger.Redis.DB,
			Key:      cfg.Ledger.Redis.Key,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Ledger.Backend)
	}
}

func artifactWriter(cfg *config.Config, bucket *storage.S3) (artifact.Writer, error) {
	switch cfg.Artifact.Sink {
	case config.SinkS3:
		return artifact.NewObjectWriter(bucket, cfg.Artifact.Prefix), nil
	case config.SinkDir:
		return artifact.NewDirWriter(cfg.Artifact.Dir)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSink, cfg.Artifact.Sink)
	}
}

// Run executes one scrape run.
func (a *App) Run(ctx context.Context) (*scrape.Result, error) {
	return a.Runner.Run(ctx)
}

// Close releases every opened ledger connection.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
