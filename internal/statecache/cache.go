package statecache

import "sync"

// Cache maps descriptions to live state objects.
type Cache[K comparable, V comparable] struct {
	mu        sync.Mutex
	entries   map[K]*entry[K, V]
	order     lruList[K]
	softLimit int

	hits, misses, evictions uint64
}

type entry[K comparable, V comparable] struct {
	value V
	node  *lruNode[K]
}

// New creates a cache. A softLimit of 0 means unlimited.
func New[K comparable, V comparable](softLimit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*entry[K, V]),
		softLimit: softLimit,
	}
}

// Lookup returns the live value cached for key, or a new value from create.
//
// A cached value is returned only if acquire succeeds on it. create runs
// under the cache lock, so concurrent lookups of one key create one value.
func (c *Cache[K, V]) Lookup(key K, acquire func(V) bool, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		if acquire(e.value) {
			c.hits++
			c.order.moveToFront(e.node)
			return e.value
		}
		// The cached value is being destroyed; replace it.
		c.order.remove(e.node)
		delete(c.entries, key)
	}

	c.misses++
	v := create()
	c.entries[key] = &entry[K, V]{value: v, node: c.order.pushFront(key)}
	for c.softLimit > 0 && len(c.entries) > c.softLimit {
		n := c.order.removeOldest()
		delete(c.entries, n.key)
		c.evictions++
	}
	return v
}

// Forget removes key if it still maps to v.
func (c *Cache[K, V]) Forget(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && e.value == v {
		c.order.remove(e.node)
		delete(c.entries, key)
	}
}

// Len returns the number of cached descriptions.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Capacity:  c.softLimit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the soft limit, 0 if unlimited.
	Capacity int
	// Hits counts lookups that returned a live cached value.
	Hits uint64
	// Misses counts lookups that created a value.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Evictions counts entries dropped over the soft limit.
	Evictions uint64
}
