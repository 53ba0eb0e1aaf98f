// Package cache holds the two in-memory caches of the scoring subsystem:
// a coalescing TTL cache wrapping external fetchers, and a bounded
// FIFO-evicting cache for computed results.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetcher produces a value for a cache key, typically via network I/O.
type Fetcher[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value      V
	insertedAt time.Time
	expiresAt  time.Time
}

// Coalescing is a TTL value cache that merges concurrent fetches for the
// same key into a single in-flight call. For N concurrent callers of a
// missing key exactly one fetch runs; every caller observes the same
// success value or the same failure. Failures are propagated and never
// cached, so the next caller retries.
//
// The value map and the in-flight table are only touched through Get and
// Clear; "check live value / join or start fetch" is atomic with respect
// to other goroutines.
type Coalescing[V any] struct {
	mu     sync.RWMutex
	values map[string]entry[V]
	flight singleflight.Group

	now func() time.Time
}

// NewCoalescing creates an empty coalescing cache.
func NewCoalescing[V any]() *Coalescing[V] {
	return &Coalescing[V]{
		values: make(map[string]entry[V]),
		now:    time.Now,
	}
}

// Get returns the live cached value for key, or runs fetch (at most once
// across concurrent callers) and caches its result for ttl. The fetch is
// not cancelled when an individual caller's context ends; other waiters,
// current or future, still benefit from its result.
func (c *Coalescing[V]) Get(ctx context.Context, key string, ttl time.Duration, fetch Fetcher[V]) (V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	result, err, _ := c.flight.Do(key, func() (interface{}, error) {
		// Another waiter of the previous flight may have stored the value
		// between our lookup and joining this flight.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.store(key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return result.(V), nil
}

// Clear drops all cached values. In-flight fetches are unaffected.
func (c *Coalescing[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]entry[V])
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones.
func (c *Coalescing[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

func (c *Coalescing[V]) lookup(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.values[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}

	if !c.now().Before(e.expiresAt) {
		// Expired entries are removed lazily on read and never resurrected.
		c.mu.Lock()
		if cur, still := c.values[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.values, key)
		}
		c.mu.Unlock()

		var zero V
		return zero, false
	}

	return e.value, true
}

func (c *Coalescing[V]) store(key string, v V, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = entry[V]{
		value:      v,
		insertedAt: now,
		expiresAt:  now.Add(ttl),
	}
}
