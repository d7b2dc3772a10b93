package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is used when NewLRU is given a non-positive capacity.
const DefaultCapacity = 128

// LRU is a fixed-capacity least-recently-used cache.
//
// A single mutex guards the map and the recency list; the entry at the
// front of the list is the most recently used, the entry at the back is
// the next eviction candidate.
type LRU struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type lruItem struct {
	key   string
	entry Entry
}

// NewLRU creates an LRU cache with the given capacity.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get retrieves a cached entry and marks it most recently used. An
// invalid key is always absent.
func (c *LRU) Get(key string) (Entry, bool) {
	if ValidateKey(key) != nil {
		return Entry{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return Entry{}, false
	}

	c.order.MoveToFront(element)
	c.hits.Add(1)
	return element.Value.(*lruItem).entry, true
}

// Put inserts or updates an entry and marks it most recently used.
// If the insert pushes the cache past capacity, the least recently
// used entry is evicted. An invalid key is dropped without caching.
func (c *LRU) Put(key string, entry Entry) {
	if ValidateKey(key) != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		element.Value.(*lruItem).entry = entry
		c.order.MoveToFront(element)
		return
	}

	element := c.order.PushFront(&lruItem{key: key, entry: entry})
	c.items[key] = element

	if len(c.items) > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*lruItem).key)
		}
	}
}

// Len returns the current number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the fixed capacity set at construction.
func (c *LRU) Capacity() int {
	return c.capacity
}

// Stats returns hit/miss counters and the current entry count.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	entries := len(c.items)
	c.mu.Unlock()

	return Stats{
		Entries: entries,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// Ensure LRU implements Cache
var _ Cache = (*LRU)(nil)
