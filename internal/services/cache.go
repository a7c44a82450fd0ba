package services

import "sync"

// memoCache is a bounded memoization cache keyed by fingerprint.
// Eviction is oldest-insertion-first: when the cache is full the entry
// that has been resident longest is removed, regardless of use.
type memoCache[V any] struct {
	mu       sync.Mutex
	entries  map[string]V
	order    []string
	capacity int
}

func newMemoCache[V any](capacity int) *memoCache[V] {
	return &memoCache[V]{
		entries:  make(map[string]V, capacity),
		capacity: capacity,
	}
}

func (c *memoCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *memoCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = value
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = value
	c.order = append(c.order, key)
}

func (c *memoCache[V]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]V, c.capacity)
	c.order = c.order[:0]
}

func (c *memoCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
