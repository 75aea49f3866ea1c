package cache

import (
	"sync"
	"time"
)

// DefaultTTL matches the lifetime of a cached page title.
const DefaultTTL = 12 * time.Hour

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// MemoryCache is an in-memory implementation of the Cache interface.
// It uses a map for storage and provides thread-safe operations via RWMutex.
//
// Expiration is lazy: Get treats an expired entry as a miss but leaves it in
// place; the next Set for that key overwrites it. No background goroutine
// is started. DeleteExpired can be called to reclaim memory.
type MemoryCache[V any] struct {
	mu   sync.RWMutex
	data map[string]entry[V]
	now  func() time.Time
}

// NewMemoryCache creates a new in-memory cache instance backed by the
// wall clock.
func NewMemoryCache[V any]() *MemoryCache[V] {
	return NewMemoryCacheWithClock[V](time.Now)
}

// NewMemoryCacheWithClock creates a cache that reads the current time
// from now. Tests use it to move time forward without sleeping.
func NewMemoryCacheWithClock[V any](now func() time.Time) *MemoryCache[V] {
	return &MemoryCache[V]{
		data: make(map[string]entry[V]),
		now:  now,
	}
}

func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	e, exists := c.data[key]
	if !exists {
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

// Set stores a key-value pair in the cache.
// Concurrent writers to the same key resolve as last-writer-wins.
func (c *MemoryCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// DeleteExpired removes every entry whose TTL has elapsed and returns
// how many were removed.
func (c *MemoryCache[V]) DeleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.data {
		if !now.Before(e.expiresAt) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries from the cache.
// This method is primarily useful for testing.
func (c *MemoryCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]entry[V])
}

// Size returns the number of stored entries, expired ones included.
// This method is primarily useful for testing and diagnostics.
func (c *MemoryCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
