package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pevans/earthfeed"
)

// ApplyEnv overlays EARTHFEED_* environment variables (highest priority).
// EARTHFEED_FEEDS replaces the feed list with "name=url" pairs separated
// by semicolons.
func (c *Config) ApplyEnv() error {
	c.MaxPerFeed = getEnvInt("EARTHFEED_MAX_PER_FEED", c.MaxPerFeed)
	c.Timezone = getEnv("EARTHFEED_TIMEZONE", c.Timezone)
	c.FetchTimeout = getEnvDuration("EARTHFEED_FETCH_TIMEOUT", c.FetchTimeout)
	c.UserAgent = getEnv("EARTHFEED_USER_AGENT", c.UserAgent)
	c.LogLevel = getEnv("EARTHFEED_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("EARTHFEED_LOG_FORMAT", c.LogFormat)

	c.S3.Bucket = getEnv("EARTHFEED_BUCKET", c.S3.Bucket)
	c.S3.Region = getEnv("EARTHFEED_REGION", getEnv("AWS_REGION", c.S3.Region))
	c.S3.Profile = getEnv("EARTHFEED_AWS_PROFILE", c.S3.Profile)
	c.S3.Endpoint = getEnv("EARTHFEED_S3_ENDPOINT", c.S3.Endpoint)
	c.S3.UsePathStyle = getEnvBool("EARTHFEED_S3_PATH_STYLE", c.S3.UsePathStyle)

	c.Ledger.Backend = getEnv("EARTHFEED_LEDGER_BACKEND", c.Ledger.Backend)
	c.Ledger.Key = getEnv("EARTHFEED_LEDGER_KEY", c.Ledger.Key)
	c.Ledger.Conditional = getEnvBool("EARTHFEED_LEDGER_CONDITIONAL", c.Ledger.Conditional)
	c.Ledger.Path = getEnv("EARTHFEED_LEDGER_PATH", c.Ledger.Path)
	c.Ledger.Redis.Addr = getEnv("EARTHFEED_REDIS_ADDR", c.Ledger.Redis.Addr)
	c.Ledger.Redis.Password = getEnv("EARTHFEED_REDIS_PASSWORD", c.Ledger.Redis.Password)
	c.Ledger.Redis.DB = getEnvInt("EARTHFEED_REDIS_DB", c.Ledger.Redis.DB)
	c.Ledger.Redis.Key = getEnv("EARTHFEED_REDIS_KEY", c.Ledger.Redis.Key)

	c.Artifact.Sink = getEnv("EARTHFEED_ARTIFACT_SINK", c.Artifact.Sink)
	c.Artifact.Prefix = getEnv("EARTHFEED_ARTIFACT_PREFIX", c.Artifact.Prefix)
	c.Artifact.Dir = getEnv("EARTHFEED_ARTIFACT_DIR", c.Artifact.Dir)

	if value := os.Getenv("EARTHFEED_FEEDS"); value != "" {
		list, err := ParseFeeds(value)
		if err != nil {
			return fmt.Errorf("invalid EARTHFEED_FEEDS: %w", err)
		}
		c.Feeds = list
	}
	return nil
}

// ParseFeeds parses "name=url;name=url".
func ParseFeeds(value string) ([]earthfeed.Feed, error) {
	var list []earthfeed.Feed
	for _, pair := range strings.Split(value, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, url, ok := strings.Cut(pair, "=")
		name, url = strings.TrimSpace(name), strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("expected name=url, got %q", pair)
		}
		list = append(list, earthfeed.Feed{Name: name, URL: url})
	}
	return list, nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration from environment variable or returns default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvInt parses an int from environment variable or returns default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool parses a bool from environment variable or returns default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
