// Package cache provides a sharded LRU cache keyed by arbitrary comparable
// types. The painting pipeline uses it for prepared brush assets: shape and
// grain sources are expensive to build (decode, grayscale, resize) and small
// to keep, so repeated strokes with the same brush hit the cache instead of
// re-preparing.
//
// The cache is safe for concurrent use. Keys are spread over a fixed number
// of shards, each with its own lock and recency list, so stroke workers and
// background thumbnailing do not serialize on one mutex.
package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// ShardCount is the number of shards. A power of 2 so shard selection
	// is a mask, not a modulo.
	ShardCount = 16

	// DefaultCapacity is the per-shard entry limit used when the caller
	// passes a capacity of zero or less.
	DefaultCapacity = 256

	shardMask = ShardCount - 1
)

// Hasher computes the hash used for shard selection.
type Hasher[K any] func(K) uint64

// StringHasher hashes a string key with FNV-1a.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// IntHasher hashes an int key with FNV-1a over its little-endian bytes.
func IntHasher(i int) uint64 {
	var buf [8]byte
	for b := 0; b < 8; b++ {
		buf[b] = byte(i >> (8 * b))
	}
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// Uint64Hasher uses the key itself as its hash.
func Uint64Hasher(u uint64) uint64 { return u }

// Stats is a snapshot of cache behavior.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the per-shard entry limit.
	Capacity int
	// TotalCapacity is the limit across all shards.
	TotalCapacity int
	// Hits and Misses count lookups since creation or ResetStats.
	Hits   uint64
	Misses uint64
	// HitRate is Hits over all lookups, 0 to 1.
	HitRate float64
	// Evictions counts entries dropped to make room.
	Evictions uint64
}

// ShardedCache is a concurrent LRU cache. Values are stored as-is, never
// copied; callers must not mutate a value after caching it.
type ShardedCache[K comparable, V any] struct {
	shards   [ShardCount]*shard[K, V]
	hasher   Hasher[K]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*entry[K, V]
	lru     *lruList[K]
}

type entry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// NewSharded creates a cache holding up to capacity entries per shard
// (ShardCount shards in total). Capacity at or below zero selects
// DefaultCapacity.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *ShardedCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &ShardedCache[K, V]{
		hasher:   hasher,
		capacity: capacity,
	}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{
			entries: make(map[K]*entry[K, V]),
			lru:     newLRUList[K](),
		}
	}
	return c
}

func (c *ShardedCache[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get returns the cached value and marks it most recently used.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)

	s.mu.RLock()
	_, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	// The LRU bump needs the write lock; re-check after upgrading since
	// the entry may have been evicted in between.
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.lru.MoveToFront(e.node)
	value := e.value
	s.mu.Unlock()

	c.hits.Add(1)
	return value, true
}

// Set stores a value, evicting least recently used entries when the shard
// is full.
func (c *ShardedCache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		existing.value = value
		s.lru.MoveToFront(existing.node)
		return
	}
	c.evictFull(s)
	s.entries[key] = &entry[K, V]{value: value, node: s.lru.PushFront(key)}
}

// GetOrCreate returns the cached value, building and caching it on a miss.
// create runs with the shard lock held so concurrent callers for the same
// key build once; keep it quick.
func (c *ShardedCache[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)

	s.mu.RLock()
	_, exists := s.entries[key]
	s.mu.RUnlock()

	if exists {
		s.mu.Lock()
		if e, ok := s.entries[key]; ok {
			s.lru.MoveToFront(e.node)
			value := e.value
			s.mu.Unlock()
			c.hits.Add(1)
			return value
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.lru.MoveToFront(e.node)
		c.hits.Add(1)
		return e.value
	}

	c.misses.Add(1)
	value := create()
	c.evictFull(s)
	s.entries[key] = &entry[K, V]{value: value, node: s.lru.PushFront(key)}
	return value
}

// evictFull drops least recently used entries until the shard has room.
// Caller holds the shard lock.
func (c *ShardedCache[K, V]) evictFull(s *shard[K, V]) {
	for s.lru.Len() >= c.capacity {
		oldest, ok := s.lru.RemoveOldest()
		if !ok {
			break
		}
		delete(s.entries, oldest)
		c.evictions.Add(1)
	}
}

// Delete removes an entry, reporting whether it existed.
func (c *ShardedCache[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.lru.Remove(e.node)
	delete(s.entries, key)
	return true
}

// Clear empties every shard. Statistics keep counting.
func (c *ShardedCache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]*entry[K, V])
		s.lru.Clear()
		s.mu.Unlock()
	}
}

// Len returns the number of entries across all shards.
func (c *ShardedCache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Capacity returns the per-shard entry limit.
func (c *ShardedCache[K, V]) Capacity() int { return c.capacity }

// TotalCapacity returns the limit across all shards.
func (c *ShardedCache[K, V]) TotalCapacity() int { return c.capacity * ShardCount }

// ShardLen reports the entry count per shard, for inspecting key spread.
func (c *ShardedCache[K, V]) ShardLen() [ShardCount]int {
	var lens [ShardCount]int
	for i, s := range c.shards {
		s.mu.RLock()
		lens[i] = len(s.entries)
		s.mu.RUnlock()
	}
	return lens
}

// Stats returns a snapshot of the counters.
func (c *ShardedCache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Len:           c.Len(),
		Capacity:      c.capacity,
		TotalCapacity: c.TotalCapacity(),
		Hits:          hits,
		Misses:        misses,
		HitRate:       hitRate,
		Evictions:     c.evictions.Load(),
	}
}

// ResetStats zeroes the counters.
func (c *ShardedCache[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
