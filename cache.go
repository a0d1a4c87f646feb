package sharegate

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested post does not exist upstream.
var ErrNotFound = errors.New("sharegate: post not found")

type cacheEntry struct {
	data       any
	insertedAt time.Time
}

// APICache is a capacity-bounded, TTL-expiring in-memory map keyed by
// serialized request parameters. Entries expire lazily at read time and the
// oldest-inserted entry is evicted when the cache is full (insertion order,
// not LRU). It is process-local and rebuilt empty on restart.
type APICache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	order   []string // keys in insertion order, oldest first
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewAPICache creates a cache with the given capacity and TTL. The clock is
// injectable so tests can assert expiry without real timers.
func NewAPICache(maxSize int, ttl time.Duration, now func() time.Time) *APICache {
	if now == nil {
		now = time.Now
	}
	return &APICache{
		entries: make(map[string]cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     now,
	}
}

// Key serializes request parameters into a stable cache key.
func (c *APICache) Key(prefix string, params any) string {
	b, err := json.Marshal(params)
	if err != nil {
		return prefix
	}
	return prefix + ":" + string(b)
}

// Get returns the cached payload for key, or nil if the entry is absent or
// older than the TTL. Expired entries are deleted on read.
func (c *APICache) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.now().Sub(e.insertedAt) > c.ttl {
		c.remove(key)
		return nil
	}
	return e.data
}

// Set inserts data under key, evicting the oldest-inserted entry if the
// cache is at capacity.
func (c *APICache) Set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	if len(c.entries) >= c.maxSize && len(c.order) > 0 {
		c.remove(c.order[0])
	}
	c.entries[key] = cacheEntry{data: data, insertedAt: c.now()}
	c.order = append(c.order, key)
}

// Invalidate clears the cache so the next read goes upstream.
func (c *APICache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.order = nil
	c.mu.Unlock()
}

// Len returns the number of entries, counting not-yet-expired ones only.
func (c *APICache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if c.now().Sub(e.insertedAt) <= c.ttl {
			n++
		}
	}
	return n
}

// remove deletes key from both the map and the order slice. Caller holds mu.
func (c *APICache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
