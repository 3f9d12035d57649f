package app

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"github.com/pevans/earthfeed"
	"github.com/pevans/earthfeed/artifact"
	"github.com/pevans/earthfeed/config"
	"github.com/pevans/earthfeed/extract"
	"github.com/pevans/earthfeed/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedXML = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Local</title>
<item><title>Off-site story</title><link>https://unsupported.invalid/a</link><pubDate>Tue, 01 Jan 2024 10:00:00 GMT</pubDate></item>
</channel></rss>`

// Test helper: local config with a file ledger and a directory sink
func localConfig(t *testing.T, feedURL string) *config.Config {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Feeds = []earthfeed.Feed{{Name: "Local", URL: feedURL}}
	cfg.Ledger.Backend = config.BackendFile
	cfg.Ledger.Path = filepath.Join(dir, "ledger", "scraped_urls.txt")
	cfg.Artifact.Sink = config.SinkDir
	cfg.Artifact.Dir = filepath.Join(dir, "out")
	return cfg
}

func feedServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestBuild_LocalRun verifies a file ledger and directory sink run end to end
func TestBuild_LocalRun(t *testing.T) {
	srv := feedServer(t)
	cfg := localConfig(t, srv.URL)

	a, err := Build(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Articles, 1)

	f, err := os.Open(result.ArtifactKey)
	require.NoError(t, err)
	defer f.Close()

	rows, err := artifact.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, []earthfeed.Article{{
		Source:    "Local",
		Published: "2024-01-01 11:00:00",
		Title:     "Off-site story",
		Link:      "https://unsupported.invalid/a",
		Content:   extract.UnsupportedContent,
	}}, rows)

	ledgerData, err := os.ReadFile(cfg.Ledger.Path)
	require.NoError(t, err)
	assert.Equal(t, "https://unsupported.invalid/a", string(bytes.TrimSpace(ledgerData)))
}

// TestBuild_SecondRunEmpty verifies the ledger persists between builds
func TestBuild_SecondRunEmpty(t *testing.T) {
	srv := feedServer(t)
	cfg := localConfig(t, srv.URL)
	cfg.Ledger.Backend = config.BackendSQLite
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "ledger.db")

	for i, want := range []int{1, 0} {
		a, err := Build(context.Background(), cfg, logging.Discard())
		require.NoError(t, err)

		result, err := a.Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, result.Articles, want, "run %d", i+1)
		require.NoError(t, a.Close())
	}
}

func TestBuild_InvalidTimezone(t *testing.T) {
	cfg := localConfig(t, "http://127.0.0.1/feed")
	cfg.Timezone = "Nowhere/Special"

	_, err := Build(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestBuild_UnknownBackend(t *testing.T) {
	cfg := localConfig(t, "http://127.0.0.1/feed")
	cfg.Ledger.Backend = "mongo"

	_, err := Build(context.Background(), cfg, logging.Discard())
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}

// TestBuild_RedisUnavailable verifies an unreachable ledger fails the build
func TestBuild_RedisUnavailable(t *testing.T) {
	cfg := localConfig(t, "http://127.0.0.1/feed")
	cfg.Ledger.Backend = config.BackendRedis
	cfg.Ledger.Redis.Addr = "127.0.0.1:1"

	_, err := Build(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = "json"

	NewLogger(cfg, &buf).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
