package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	billingapp "github.com/bizdocs/backend/internal/application/billing"
)

var _ billingapp.ScanStorage = (*MemoryScanStorage)(nil)

// MemoryObject is a scan held by MemoryScanStorage
type MemoryObject struct {
	Data        []byte
	ContentType string
}

// MemoryScanStorage keeps scans in process memory. It is meant for
// development and tests; scans are lost on restart.
type MemoryScanStorage struct {
	// BaseURL prefixes the download URLs it hands out
	BaseURL    string
	Expiration time.Duration

	mu      sync.RWMutex
	objects map[string]MemoryObject
}

// NewMemoryScanStorage creates a new MemoryScanStorage
func NewMemoryScanStorage() *MemoryScanStorage {
	return &MemoryScanStorage{
		BaseURL:    "memory://scans",
		Expiration: 15 * time.Minute,
		objects:    make(map[string]MemoryObject),
	}
}

// Put stores a copy of data
func (m *MemoryScanStorage) Put(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errKeyRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = MemoryObject{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// DownloadURL returns a pseudo URL for the key
func (m *MemoryScanStorage) DownloadURL(_ context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errKeyRequired
	}
	expiresAt := time.Now().Add(m.Expiration)
	u := m.BaseURL + "/" + key + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return u, expiresAt, nil
}

// Delete removes a scan
func (m *MemoryScanStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errKeyRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Get returns a stored scan
func (m *MemoryScanStorage) Get(key string) (MemoryObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Len returns the number of stored scans
func (m *MemoryScanStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
