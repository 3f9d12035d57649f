// Package artifact writes a batch of scraped articles as the stage's CSV
// output artifact.
package artifact

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pevans/earthfeed"
	"github.com/pevans/earthfeed/storage"
)

const (
	// DefaultPrefix is the namespace raw artifacts are written under.
	DefaultPrefix = "1_raw/"
	// ContentType of the encoded artifact.
	ContentType = "text/csv"

	nameLayout = "20060102_150405"
	// maxNames bounds the suffixed names tried when a run's name is taken.
	maxNames = 20
)

// Writer persists one batch artifact and returns where it went.
type Writer interface {
	Write(ctx context.Context, articles []earthfeed.Article) (string, error)
}

// Encode writes the header row followed by one row per article.
func Encode(w io.Writer, articles []earthfeed.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(earthfeed.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, a := range articles {
		if err := cw.Write(a.Record()); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", a.Link, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads an artifact produced by Encode.
func Decode(r io.Reader) ([]earthfeed.Article, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("artifact has no header")
	}
	if strings.Join(rows[0], ",") != strings.Join(earthfeed.Columns, ",") {
		return nil, fmt.Errorf("unexpected artifact header %v", rows[0])
	}

	articles := make([]earthfeed.Article, 0, len(rows)-1)
	for _, row := range rows[1:] {
		articles = append(articles, earthfeed.Article{
			Source:    row[0],
			Published: row[1],
			Title:     row[2],
			Link:      row[3],
			Content:   row[4],
		})
	}
	return articles, nil
}

// Name returns the artifact file name for a run started at now.
func Name(now time.Time) string {
	return nameAt(now, 1)
}

// nameAt returns the n-th candidate name for now. Candidates after the
// first carry a _<n> suffix so runs started in the same second do not
// collide.
func nameAt(now time.Time, n int) string {
	name := "1_raw_" + now.Format(nameLayout)
	if n > 1 {
		name += fmt.Sprintf("_%d", n)
	}
	return name + ".csv"
}

// Key returns the object key of the artifact under prefix.
func Key(prefix string, now time.Time) string {
	return keyAt(prefix, now, 1)
}

func keyAt(prefix string, now time.Time, n int) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + nameAt(now, n)
}

// Putter is the subset of storage.S3 the object writer needs.
type Putter interface {
	Put(ctx context.Context, key string, body io.Reader, opts storage.PutOptions) error
}

// ObjectWriter uploads artifacts to object storage.
type ObjectWriter struct {
	client Putter
	prefix string
	now    func() time.Time
}

// NewObjectWriter creates a writer putting artifacts under prefix.
func NewObjectWriter(client Putter, prefix string) *ObjectWriter {
	return &ObjectWriter{client: client, prefix: prefix, now: time.Now}
}

// Write encodes articles and uploads them create-only, returning the
// object key. An existing object is never replaced; the next suffixed key
// is tried instead.
func (w *ObjectWriter) Write(ctx context.Context, articles []earthfeed.Article) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, articles); err != nil {
		return "", err
	}

	now := w.now()
	opts := storage.PutOptions{ContentType: ContentType, IfNoneMatch: "*"}
	for n := 1; n <= maxNames; n++ {
		key := keyAt(w.prefix, now, n)
		err := w.client.Put(ctx, key, bytes.NewReader(buf.Bytes()), opts)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, storage.ErrPreconditionFailed) {
			return "", fmt.Errorf("failed to upload artifact: %w", err)
		}
	}
	return "", fmt.Errorf("failed to upload artifact: %d names for %s already taken", maxNames, Key(w.prefix, now))
}

// DirWriter writes artifacts into a local directory.
type DirWriter struct {
	dir string
	now func() time.Time
}

// NewDirWriter creates a writer under dir, creating it if needed.
func NewDirWriter(dir string) (*DirWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &DirWriter{dir: dir, now: time.Now}, nil
}

// Write encodes articles to a new file and returns its path. Existing
// files are never replaced.
func (w *DirWriter) Write(_ context.Context, articles []earthfeed.Article) (string, error) {
	f, path, err := w.create(w.now())
	if err != nil {
		return "", err
	}
	if err := Encode(f, articles); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close artifact: %w", err)
	}
	return path, nil
}

// create opens the first free candidate name for now.
func (w *DirWriter) create(now time.Time) (*os.File, string, error) {
	for n := 1; n <= maxNames; n++ {
		path := filepath.Join(w.dir, nameAt(now, n))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("failed to create artifact: %w", err)
		}
	}
	return nil, "", fmt.Errorf("failed to create artifact: %d names for %s already taken", maxNames, Name(now))
}
