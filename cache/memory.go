// Package cache provides s3types.Cache implementations for simples3 clients.
package cache

import (
	"sync"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

// entry is a single cached item with its expiration time.
// A zero expiration never expires.
type entry struct {
	item       s3types.Item
	expiration time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}

// Memory is a thread-safe in-memory cache with TTL and size bound.
type Memory struct {
	entries map[string]*entry

	// maxEntries limits the number of entries (0 = unlimited)
	maxEntries int

	// ttl applies to every entry (0 = no expiry)
	ttl time.Duration

	now func() time.Time
	mu  sync.Mutex
}

var _ s3types.Cache = (*Memory)(nil)

// NewMemory creates an in-memory cache. A zero ttl keeps entries until evicted,
// a zero maxEntries disables eviction.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	return &Memory{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns a copy of the item stored under bucket and key.
func (m *Memory) Get(bucket, key string) (*s3types.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := cacheKey(bucket, key)
	e, ok := m.entries[k]
	if !ok {
		return nil, false
	}
	if e.expired(m.now()) {
		delete(m.entries, k)
		return nil, false
	}

	item := e.item
	return &item, true
}

// Set stores a copy of item. When the cache is full, expired entries are
// dropped first, then the entry closest to expiry.
func (m *Memory) Set(bucket, key string, item *s3types.Item) error {
	if item == nil {
		return m.Delete(bucket, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	k := cacheKey(bucket, key)
	if _, exists := m.entries[k]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.evict(now)
	}

	e := &entry{item: *item}
	if m.ttl > 0 {
		e.expiration = now.Add(m.ttl)
	}
	m.entries[k] = e
	return nil
}

// Delete removes the item stored under bucket and key.
func (m *Memory) Delete(bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, cacheKey(bucket, key))
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
	return len(m.entries)
}

// evict must be called with mu held.
func (m *Memory) evict(now time.Time) {
	var (
		victim string
		oldest time.Time
	)
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
			continue
		}
		if victim == "" || e.expiration.Before(oldest) {
			victim, oldest = k, e.expiration
		}
	}

	if len(m.entries) >= m.maxEntries && victim != "" {
		delete(m.entries, victim)
	}
}

// cacheKey joins bucket and key. Bucket names cannot contain "/", so the
// result is unambiguous.
func cacheKey(bucket, key string) string {
	return bucket + "/" + key
}
