package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU is a thread-safe least-recently-used cache bounded by total entry size.
type LRU[V any] struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	sizeOf    func(V) int64
	items     map[string]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[V any] struct {
	key   string
	value V
	size  int64
}

// NewLRU creates a cache holding at most capacity bytes as measured by sizeOf.
func NewLRU[V any](capacity int64, sizeOf func(V) int64) *LRU[V] {
	return &LRU[V]{
		capacity:  capacity,
		sizeOf:    sizeOf,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Get returns a cached value.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(el)
		return el.Value.(*entry[V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set caches a value. Values larger than the whole capacity are not cached.
func (c *LRU[V]) Set(key string, v V) {
	size := c.sizeOf(v)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	if size > c.capacity {
		return
	}
	for c.size+size > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			break
		}
		c.removeElement(back)
	}

	c.items[key] = c.evictList.PushFront(&entry[V]{key: key, value: v, size: size})
	c.size += size
}

// Remove drops key if present.
func (c *LRU[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

func (c *LRU[V]) removeElement(el *list.Element) {
	c.evictList.Remove(el)
	e := el.Value.(*entry[V])
	delete(c.items, e.key)
	c.size -= e.size
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Size returns the current size of the cache in bytes.
func (c *LRU[V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns hit and miss counts.
func (c *LRU[V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
