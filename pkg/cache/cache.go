package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is an expiring key/value store. Get never returns a value past its
// expiry. Implementations must be safe for concurrent use; callers needing
// check-then-set atomicity provide their own locking.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string, expiresAt time.Time) error
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Cache. Expired entries are dropped lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !time.Now().Before(e.expiresAt) {
		m.mu.Lock()
		// recheck under the write lock, a fresher value may have landed
		if cur, ok := m.entries[key]; ok && !time.Now().Before(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(ctx context.Context, key, value string, expiresAt time.Time) error {
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}
