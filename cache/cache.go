package cache

import "sync"

// Cache is a single-lock LRU cache. It suits values looked up from few
// goroutines at modest rates; for contended paths use ShardedCache.
//
// A Cache must not be copied after first use.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[K, V]
	lru      *lruList[K]
	capacity int
}

// New creates a cache holding up to capacity entries. Capacity at or
// below zero means unbounded.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*entry[K, V]),
		lru:      newLRUList[K](),
		capacity: capacity,
	}
}

// Get returns the cached value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.lru.MoveToFront(e.node)
	return e.value, true
}

// Set stores a value, evicting least recently used entries when full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.lru.MoveToFront(e.node)
		return
	}
	c.evictFull()
	c.entries[key] = &entry[K, V]{value: value, node: c.lru.PushFront(key)}
}

// GetOrCreate returns the cached value, building and caching it on a
// miss. create runs under the cache lock so concurrent callers for the
// same key build once; keep it quick.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.lru.MoveToFront(e.node)
		return e.value
	}
	value := create()
	c.evictFull()
	c.entries[key] = &entry[K, V]{value: value, node: c.lru.PushFront(key)}
	return value
}

// Delete removes an entry, reporting whether it existed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.lru.Remove(e.node)
	delete(c.entries, key)
	return true
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[K, V])
	c.lru.Clear()
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the entry limit, zero meaning unbounded.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Stats returns a snapshot of the cache. The plain cache does not count
// hits and misses; those fields stay zero.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{Len: c.Len(), Capacity: c.capacity}
}

// evictFull drops least recently used entries until there is room for
// one more. Caller holds the lock.
func (c *Cache[K, V]) evictFull() {
	if c.capacity <= 0 {
		return
	}
	for c.lru.Len() >= c.capacity {
		oldest, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		delete(c.entries, oldest)
	}
}
