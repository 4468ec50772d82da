package configstore

import (
	"context"
	"maps"
	"sync"
)

// Storage keys.
const (
	// KeyHomeAddresses holds the JSON array of pipe-delimited addresses.
	KeyHomeAddresses = "userHomeAddresses"
	// KeyAlertEmail holds the plain alert email string.
	KeyAlertEmail = "user2FAEmail"
)

// Storage is a durable string key/value store.
// database.StateDB implements it.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put writes all entries atomically.
	Put(ctx context.Context, entries map[string]string) error
}

// MemoryStorage is an in-memory Storage, used for ephemeral runs and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStorage creates a MemoryStorage seeded with a copy of entries.
func NewMemoryStorage(entries map[string]string) *MemoryStorage {
	m := &MemoryStorage{entries: make(map[string]string, len(entries))}
	maps.Copy(m.entries, entries)
	return m
}

// Get implements Storage.
func (m *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

// Put implements Storage.
func (m *MemoryStorage) Put(ctx context.Context, entries map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.entries, entries)
	return nil
}
