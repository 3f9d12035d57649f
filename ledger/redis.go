package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the redis SET holding the ledger.
const DefaultRedisKey = "earthfeed:scraped_urls"

// RedisConfig configures the redis connection for RedisStore.
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Key      string
}

// RedisStore keeps the ledger in a redis SET. SADD is atomic, so concurrent
// runs cannot lose each other's URLs.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to redis and verifies connectivity.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisStoreFromClient(client, cfg.Key), nil
}

// NewRedisStoreFromClient wraps an existing client. Key defaults to
// DefaultRedisKey.
func NewRedisStoreFromClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Close closes the underlying redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Load returns every member of the set. A missing key is an empty set.
func (s *RedisStore) Load(ctx context.Context) ([]string, error) {
	urls, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read redis ledger %s: %w", s.key, err)
	}
	return urls, nil
}

// Append adds url to the set.
func (s *RedisStore) Append(ctx context.Context, url string) error {
	if err := s.client.SAdd(ctx, s.key, url).Err(); err != nil {
		return fmt.Errorf("failed to add to redis ledger %s: %w", s.key, err)
	}
	return nil
}
