package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/pevans/earthfeed/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjects is an ObjectClient holding one versioned blob per key.
type fakeObjects struct {
	blobs   map[string]string
	version map[string]int
	// beforePut runs ahead of every Put, letting tests simulate a
	// concurrent writer.
	beforePut func()
	getErr    error
	puts      []storage.PutOptions
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{blobs: map[string]string{}, version: map[string]int{}}
}

func (f *fakeObjects) etag(key string) string {
	return fmt.Sprintf(`"v%d"`, f.version[key])
}

func (f *fakeObjects) set(key, body string) {
	f.blobs[key] = body
	f.version[key]++
}

func (f *fakeObjects) Get(_ context.Context, key string) (*storage.Object, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, storage.ErrNotFound)
	}
	return &storage.Object{Body: []byte(body), ETag: f.etag(key)}, nil
}

func (f *fakeObjects) Put(_ context.Context, key string, body io.Reader, opts storage.PutOptions) error {
	if f.beforePut != nil {
		f.beforePut()
	}
	f.puts = append(f.puts, opts)

	_, exists := f.blobs[key]
	if opts.IfNoneMatch == "*" && exists {
		return storage.ErrPreconditionFailed
	}
	if opts.IfMatch != "" && (!exists || opts.IfMatch != f.etag(key)) {
		return storage.ErrPreconditionFailed
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.set(key, string(data))
	return nil
}

// TestObjectStore_LoadMissing verifies a missing blob is an empty ledger
func TestObjectStore_LoadMissing(t *testing.T) {
	store := NewObjectStore(newFakeObjects(), "", true)

	urls, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, urls)
}

// TestObjectStore_LoadError verifies read failures other than not-found
// propagate
func TestObjectStore_LoadError(t *testing.T) {
	objects := newFakeObjects()
	objects.getErr = errors.New("access denied")
	store := NewObjectStore(objects, "", true)

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, objects.getErr)
}

// TestObjectStore_AppendCreatesBlob verifies the first append creates the
// blob with a create-only condition
func TestObjectStore_AppendCreatesBlob(t *testing.T) {
	objects := newFakeObjects()
	store := NewObjectStore(objects, "", true)

	require.NoError(t, store.Append(context.Background(), "https://grist.org/a"))

	assert.Equal(t, "https://grist.org/a", objects.blobs[DefaultObjectKey])
	require.Len(t, objects.puts, 1)
	assert.Equal(t, "*", objects.puts[0].IfNoneMatch)
}

// TestObjectStore_AppendRewritesFullSet verifies append rewrites the whole
// newline-joined set
func TestObjectStore_AppendRewritesFullSet(t *testing.T) {
	objects := newFakeObjects()
	objects.set("ledger.txt", "https://grist.org/a\nhttps://grist.org/b")
	store := NewObjectStore(objects, "ledger.txt", true)

	require.NoError(t, store.Append(context.Background(), "https://grist.org/c"))

	assert.Equal(t, "https://grist.org/a\nhttps://grist.org/b\nhttps://grist.org/c", objects.blobs["ledger.txt"])
	assert.Equal(t, `"v1"`, objects.puts[0].IfMatch)
}

// TestObjectStore_AppendKnownURL verifies no write happens for a known URL
func TestObjectStore_AppendKnownURL(t *testing.T) {
	objects := newFakeObjects()
	objects.set(DefaultObjectKey, "https://grist.org/a")
	store := NewObjectStore(objects, "", true)

	require.NoError(t, store.Append(context.Background(), "https://grist.org/a"))
	assert.Empty(t, objects.puts)
}

// TestObjectStore_AppendRetriesLostRace verifies a concurrent writer's URL
// survives our append
func TestObjectStore_AppendRetriesLostRace(t *testing.T) {
	objects := newFakeObjects()
	objects.set(DefaultObjectKey, "https://grist.org/a")

	raced := false
	objects.beforePut = func() {
		if !raced {
			raced = true
			objects.set(DefaultObjectKey, "https://grist.org/a\nhttps://grist.org/other-run")
		}
	}

	store := NewObjectStore(objects, "", true)
	require.NoError(t, store.Append(context.Background(), "https://grist.org/mine"))

	assert.Equal(t, "https://grist.org/a\nhttps://grist.org/other-run\nhttps://grist.org/mine", objects.blobs[DefaultObjectKey])
	assert.Len(t, objects.puts, 2)
}

// TestObjectStore_AppendGivesUp verifies retries are bounded
func TestObjectStore_AppendGivesUp(t *testing.T) {
	objects := newFakeObjects()
	objects.set(DefaultObjectKey, "https://grist.org/a")
	objects.beforePut = func() {
		objects.set(DefaultObjectKey, objects.blobs[DefaultObjectKey])
	}

	store := NewObjectStore(objects, "", true)
	err := store.Append(context.Background(), "https://grist.org/mine")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrPreconditionFailed)
	assert.Len(t, objects.puts, defaultMaxAttempts)
}

// TestObjectStore_Unconditional verifies plain overwrites when conditional
// writes are disabled
func TestObjectStore_Unconditional(t *testing.T) {
	objects := newFakeObjects()
	objects.set(DefaultObjectKey, "https://grist.org/a")
	store := NewObjectStore(objects, "", false)

	require.NoError(t, store.Append(context.Background(), "https://grist.org/b"))
	require.Len(t, objects.puts, 1)
	assert.Empty(t, objects.puts[0].IfMatch)
	assert.Empty(t, objects.puts[0].IfNoneMatch)
}
