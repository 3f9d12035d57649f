package ledger

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. LoadErr and AppendErr, when set, are
// returned by the corresponding method; tests use them to inject failures.
type MemoryStore struct {
	mu        sync.Mutex
	urls      []string
	appends   int
	LoadErr   error
	AppendErr error
}

// NewMemoryStore creates a store pre-populated with urls.
func NewMemoryStore(urls ...string) *MemoryStore {
	return &MemoryStore{urls: append([]string(nil), urls...)}
}

// Load returns a copy of the stored URLs.
func (m *MemoryStore) Load(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return append([]string(nil), m.urls...), nil
}

// Append records url.
func (m *MemoryStore) Append(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.appends++
	if !containsURL(m.urls, url) {
		m.urls = append(m.urls, url)
	}
	return nil
}

// URLs returns a copy of the stored URLs in append order.
func (m *MemoryStore) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.urls...)
}

// Appends returns how many Append calls succeeded.
func (m *MemoryStore) Appends() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appends
}
