package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxEntries bounds a MemoryStore created without an explicit size.
const DefaultMaxEntries = 300

type memoryEntry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

func (e memoryEntry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// MemoryStore is a process-local store. Entries are never evicted in the
// background; an expired entry is only noticed, and dropped, when read or when
// a Set finds the store full. A full store then gives up its least recently
// used entries.
type MemoryStore struct {
	mu         sync.Mutex
	entries    *lru.Cache[string, memoryEntry]
	maxEntries int
	now        func() time.Time
}

// NewMemory creates an empty in-process store holding up to DefaultMaxEntries
func NewMemory() *MemoryStore {
	return NewMemorySized(DefaultMaxEntries, time.Now)
}

// NewMemoryWithClock creates a store that reads time from now
func NewMemoryWithClock(now func() time.Time) *MemoryStore {
	return NewMemorySized(DefaultMaxEntries, now)
}

// NewMemorySized creates a store holding at most maxEntries entries.
// A non-positive maxEntries means DefaultMaxEntries.
func NewMemorySized(maxEntries int, now func() time.Time) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	// lru.New only fails for a non-positive size.
	entries, _ := lru.New[string, memoryEntry](maxEntries)
	return &MemoryStore{entries: entries, maxEntries: maxEntries, now: now}
}

// Get returns the entry if it is younger than its ttl
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.now()) {
		m.entries.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value, replacing any previous entry
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !m.entries.Contains(key) && m.entries.Len() >= m.maxEntries {
		m.sweep(now)
	}
	m.entries.Add(key, memoryEntry{value: value, storedAt: now, ttl: ttl})
	return nil
}

// sweep drops expired entries. Caller holds mu.
func (m *MemoryStore) sweep(now time.Time) {
	for _, key := range m.entries.Keys() {
		if e, ok := m.entries.Peek(key); ok && e.expired(now) {
			m.entries.Remove(key)
		}
	}
}

// Clear drops every entry
func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.entries.Purge()
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries.Len()
}

func (m *MemoryStore) Health(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
