package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pevans/earthfeed/storage"
)

// DefaultObjectKey is where the ledger blob lives in the bucket.
const DefaultObjectKey = "1_raw/scraped_urls.txt"

// defaultMaxAttempts bounds the read-modify-write retries on a contended
// ledger blob.
const defaultMaxAttempts = 5

// ObjectClient is the subset of storage.S3 the ledger needs.
type ObjectClient interface {
	Get(ctx context.Context, key string) (*storage.Object, error)
	Put(ctx context.Context, key string, body io.Reader, opts storage.PutOptions) error
}

// ObjectStore keeps the ledger as one newline-joined text blob in object
// storage. Each Append re-reads the blob, adds the URL and overwrites it.
// When Conditional is set the overwrite only succeeds if the blob is still
// the version that was read, and a lost race is retried.
type ObjectStore struct {
	client      ObjectClient
	key         string
	conditional bool
	maxAttempts int
}

// NewObjectStore creates an object-backed ledger store at key. Key defaults
// to DefaultObjectKey.
func NewObjectStore(client ObjectClient, key string, conditional bool) *ObjectStore {
	if key == "" {
		key = DefaultObjectKey
	}
	return &ObjectStore{
		client:      client,
		key:         key,
		conditional: conditional,
		maxAttempts: defaultMaxAttempts,
	}
}

// Load reads the blob. A missing blob is an empty ledger.
func (s *ObjectStore) Load(ctx context.Context) ([]string, error) {
	urls, _, err := s.read(ctx)
	return urls, err
}

// Append adds url to the blob.
func (s *ObjectStore) Append(ctx context.Context, url string) error {
	for attempt := 1; ; attempt++ {
		urls, etag, err := s.read(ctx)
		if err != nil {
			return err
		}
		if containsURL(urls, url) {
			return nil
		}
		urls = append(urls, url)

		opts := storage.PutOptions{ContentType: "text/plain; charset=utf-8"}
		if s.conditional {
			if etag == "" {
				opts.IfNoneMatch = "*"
			} else {
				opts.IfMatch = etag
			}
		}

		err = s.client.Put(ctx, s.key, strings.NewReader(joinLines(urls)), opts)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrPreconditionFailed) || attempt >= s.maxAttempts {
			return fmt.Errorf("failed to write ledger %s: %w", s.key, err)
		}
	}
}

func (s *ObjectStore) read(ctx context.Context) ([]string, string, error) {
	obj, err := s.client.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read ledger %s: %w", s.key, err)
	}
	return parseLines(string(obj.Body)), obj.ETag, nil
}
