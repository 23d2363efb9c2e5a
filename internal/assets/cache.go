package assets

import (
	"sync"

	"github.com/google/uuid"
)

// Cache is an in-memory cache keyed by asset id.
type Cache[V any] struct {
	data map[uuid.UUID]V
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{
		data: make(map[uuid.UUID]V),
	}
}

// Get retrieves an item from the cache.
func (c *Cache[V]) Get(id uuid.UUID) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[id]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Peek is Get without touching the statistics.
func (c *Cache[V]) Peek(id uuid.UUID) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[id]
	return v, ok
}

// Set stores an item in the cache.
func (c *Cache[V]) Set(id uuid.UUID, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[id] = v
}

// Len returns the number of cached items.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear empties the cache and resets its statistics.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[uuid.UUID]V)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache[V]) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
