package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the ledger in a SQLite table. Appends are a single
// INSERT OR IGNORE, so concurrent writers cannot lose each other's URLs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the ledger database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the scraped_urls table if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scraped_urls (
		url TEXT PRIMARY KEY,
		scraped_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns every recorded URL in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT url FROM scraped_urls ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger rows: %w", err)
	}

	return urls, nil
}

// Append records url.
func (s *SQLiteStore) Append(ctx context.Context, url string) error {
	query := "INSERT OR IGNORE INTO scraped_urls (url, scraped_at) VALUES (?, ?)"
	if _, err := s.db.ExecContext(ctx, query, url, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to insert ledger url: %w", err)
	}
	return nil
}
