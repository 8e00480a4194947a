// Package cache implements a TTL-bound result cache for resolved queries.
// Expiry is lazy: entries are checked against the clock on access, so there
// is no background reaper and tests can drive time deterministically.
// Concurrent misses for the same key are collapsed with singleflight so the
// underlying resolution runs once.
package cache

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a TTL result cache. Safe for concurrent use. The zero value is
// not usable; construct with New.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]

	ttl     time.Duration
	enabled bool
	now     func() time.Time
	group   singleflight.Group
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Option configures a Cache.
type Option[V any] func(*Cache[V])

// WithClock overrides the time source. For tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

// New creates a cache with the given TTL. A disabled cache never stores and
// never hits, but GetOrCompute still collapses concurrent identical calls.
func New[V any](ttl time.Duration, enabled bool, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		enabled: enabled,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the cache key for a query and tier override. The query is
// lowercased and whitespace-collapsed so trivially restated queries share an
// entry; the override is part of the key because it changes the answer.
func Key(query, override string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if override == "" {
		return normalized
	}
	return normalized + "\x00" + override
}

// Get returns the cached value for key when present and fresh. An entry
// whose age exceeds the TTL is removed on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if !c.enabled {
		return zero, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if c.now().Sub(e.storedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have
		// refreshed the entry.
		if cur, still := c.entries[key]; still && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

// Put stores value under key, stamping it with the current clock.
func (c *Cache[V]) Put(key string, value V) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// GetOrCompute returns the fresh cached value for key, or runs compute and
// caches its result. Concurrent calls with the same key share one compute
// invocation; only the caller whose compute actually ran sees hit == false,
// so per-query statistics are recorded exactly once.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (value V, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	hit = true
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		hit = false
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.Put(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return v.(V), hit, nil
}

// Invalidate removes a single entry.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every entry. Called when the backing store changes, for
// example after a migration run.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len reports the number of stored entries, including any not yet expired
// lazily.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
