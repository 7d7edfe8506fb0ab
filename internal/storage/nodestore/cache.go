package nodestore

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache fronts a Backend with an LRU+TTL cache, grounded on the teacher's
// own use of hashicorp/golang-lru for SHAMap node caching rather than a
// hand-rolled eviction list.
type Cache struct {
	lru *expirable.LRU[Hash256, *Node]

	hits   uint64
	misses uint64
}

// NewCache creates a cache holding up to maxSize entries, each expiring
// ttl after insertion.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[Hash256, *Node](maxSize, nil, ttl)}
}

func (c *Cache) Get(hash Hash256) (*Node, bool) {
	node, ok := c.lru.Get(hash)
	if ok {
		atomic.AddUint64(&c.hits, 1)
	} else {
		atomic.AddUint64(&c.misses, 1)
	}
	return node, ok
}

func (c *Cache) Put(node *Node) {
	if node == nil {
		return
	}
	c.lru.Add(node.Hash, node)
}

func (c *Cache) Remove(hash Hash256) {
	c.lru.Remove(hash)
}

func (c *Cache) Clear() {
	c.lru.Purge()
}

// Sweep is a no-op: expirable.LRU evicts lazily on access and on its own
// background janitor, so there's nothing for callers to force here beyond
// what the library already does.
func (c *Cache) Sweep() int { return 0 }

func (c *Cache) Size() int { return c.lru.Len() }

func (c *Cache) Stats() CacheStats {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	return CacheStats{Hits: hits, Misses: misses, CurrentSize: c.lru.Len()}
}

// CacheStats holds cache hit/miss counters and current occupancy.
type CacheStats struct {
	Hits        uint64
	Misses      uint64
	CurrentSize int
	MaxSize     int
}

func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

func (s CacheStats) String() string {
	return fmt.Sprintf("cache: %d/%d items, %.1f%% hit rate", s.CurrentSize, s.MaxSize, s.HitRate())
}
