package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the ledger as a newline-joined text file on local disk.
// Intended for single-writer local runs.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store. The parent directory is created
// if it doesn't exist.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads the ledger file. A missing file is an empty ledger.
func (s *FileStore) Load(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}
	return parseLines(string(data)), nil
}

// Append rewrites the file with url added. The rewrite goes through a
// temporary file so a crash never leaves a truncated ledger.
func (s *FileStore) Append(ctx context.Context, url string) error {
	urls, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if containsURL(urls, url) {
		return nil
	}
	urls = append(urls, url)

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(joinLines(urls)), 0o600); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	return nil
}
