package cache

import (
	"container/list"
	"sync"
	"time"
)

// FIFO is a bounded TTL cache evicting in insertion order. Despite caches
// of this shape often being labelled "LRU", reads here do not reorder
// entries: when the capacity is exceeded the earliest-inserted entry goes
// first. That is a deliberate simplification over true recency-based
// eviction, chosen because entries also carry a short TTL that bounds
// staleness anyway.
type FIFO[V any] struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // of *fifoEntry[V], oldest at the front
	capacity int
	ttl      time.Duration

	now func() time.Time
}

type fifoEntry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
	expiresAt  time.Time
}

// NewFIFO creates a cache holding at most capacity entries, each living
// for ttl. A capacity of 0 or less disables the size bound.
func NewFIFO[V any](capacity int, ttl time.Duration) *FIFO[V] {
	return &FIFO[V]{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the value for key. Expired entries are treated as absent
// and removed lazily. The returned value is the caller's copy; the cache
// never hands out an alias it later mutates.
func (c *FIFO[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	e := el.Value.(*fifoEntry[V])
	if !c.now().Before(e.expiresAt) {
		c.removeLocked(el)
		var zero V
		return zero, false
	}

	return e.value, true
}

// Set stores value under key. Overwriting an existing key refreshes the
// TTL and moves the entry to the back of the eviction order (it counts as
// a new insertion). When the capacity bound is exceeded the earliest
// insertion is evicted.
func (c *FIFO[V]) Set(key string, value V) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}

	e := &fifoEntry[V]{
		key:        key,
		value:      value,
		insertedAt: now,
		expiresAt:  now.Add(c.ttl),
	}
	c.entries[key] = c.order.PushBack(e)

	if c.capacity > 0 {
		for c.order.Len() > c.capacity {
			c.removeLocked(c.order.Front())
		}
	}
}

// Clear removes all entries.
func (c *FIFO[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones.
func (c *FIFO[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *FIFO[V]) removeLocked(el *list.Element) {
	e := c.order.Remove(el).(*fifoEntry[V])
	delete(c.entries, e.key)
}
