// Package cache memoizes values keyed by a comparable key.
//
// A value is computed at most once per key while it is fresh, even when
// several goroutines ask for it at the same time. Errors are cached like
// values, so a failing computation is not retried until its entry expires.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	once     sync.Once
	value    V
	err      error
	computed time.Time
}

// Cache is a concurrency-safe memo table. A zero TTL keeps entries forever.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache whose entries expire ttl after they were computed.
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetOrCompute returns the cached result for key, calling compute if there
// is none or it has expired. Concurrent callers for the same key share one
// call.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		e = &entry[V]{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.value, e.err = compute()
		c.mu.Lock()
		e.computed = c.now()
		c.mu.Unlock()
	})
	return e.value, e.err
}

// expired must be called with c.mu held. An entry still being computed is
// never expired.
func (c *Cache[K, V]) expired(e *entry[V]) bool {
	if c.ttl <= 0 || e.computed.IsZero() {
		return false
	}
	return c.now().Sub(e.computed) > c.ttl
}
