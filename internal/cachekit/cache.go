// Package cachekit provides the two shared concurrency primitives used by
// every process-wide cache (feature, crime, route) and by request
// coalescing: a bounded TTL cache backed by github.com/hashicorp/golang-lru,
// and an in-flight map for sharing one computation among concurrent
// callers with the same key.
package cachekit

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// entry pairs a cached value with its insertion time (CacheEntry in spec §3).
type entry[V any] struct {
	value     V
	insertedAt time.Time
}

// Cache is a read-through-write-through TTL cache over a bounded LRU. The
// LRU gives opportunistic eviction once size exceeds softCap (spec §5);
// TTL is checked on every Get so stale hits are treated as misses without
// waiting for the LRU to evict them.
type Cache[K comparable, V any] struct {
	ttl  time.Duration
	lru  *lru.Cache
	mu   sync.Mutex
}

// New builds a cache with the given TTL and soft size cap.
func New[K comparable, V any](ttl time.Duration, softCap int) *Cache[K, V] {
	c, err := lru.New(softCap)
	if err != nil {
		// lru.New only errors for size <= 0; fall back to a sane default
		// rather than propagating a constructor error through every caller.
		c, _ = lru.New(64)
	}
	return &Cache[K, V]{ttl: ttl, lru: c}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	raw, ok := c.lru.Get(key)
	c.mu.Unlock()

	var zero V
	if !ok {
		return zero, false
	}
	e := raw.(entry[V])
	if time.Since(e.insertedAt) > c.ttl {
		c.mu.Lock()
		c.lru.Remove(key)
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set inserts or replaces the cached value for key. No entry is ever
// mutated in place; Set always installs a fresh entry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry[V]{value: value, insertedAt: time.Now()})
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// call is a single shared in-flight computation.
type call[V any] struct {
	wg  sync.WaitGroup
	val V
	err error
}

// Inflight implements request coalescing: concurrent callers sharing a key
// await one leader's result instead of duplicating the underlying work.
// The map lock is held only for insert/lookup/delete, never across fn.
type Inflight[K comparable, V any] struct {
	mu    sync.Mutex
	calls map[K]*call[V]
}

// NewInflight builds an empty coalescing map.
func NewInflight[K comparable, V any]() *Inflight[K, V] {
	return &Inflight[K, V]{calls: make(map[K]*call[V])}
}

// Do runs fn for key if no call is already in flight, otherwise waits for
// the in-flight call's result. A waiter that is not the leader never sees
// the leader's error cached for future callers: once the leader completes
// (success or failure) the entry is removed, so the next caller for key
// always starts a fresh fn call if the previous one failed.
func (g *Inflight[K, V]) Do(key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err
	}

	c := &call[V]{}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	c.wg.Done()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()

	return c.val, c.err
}
