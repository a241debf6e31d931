// Package cache memoizes calculator results keyed by a hash of their inputs.
// A hit is always equal to recomputing, so callers may skip the cache freely.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
)

// Cache stores computed views by key digest.
type Cache interface {
	// Get returns the cached value for key, if any.
	Get(ctx context.Context, key uint64) (any, bool)

	// Put records a value, evicting the oldest entry when full.
	Put(ctx context.Context, key uint64, value any)

	// Purge drops every entry.
	Purge(ctx context.Context)

	Size() int64
}

// node is one entry in the insertion-ordered list.
type node struct {
	key   uint64
	value any
	prev  *node
	next  *node
}

func (n *node) reset() {
	n.key = 0
	n.value = nil
	n.prev = nil
	n.next = nil
}

// ResultCache is a bounded, insertion-ordered cache.
// head is the newest entry, tail the next to be evicted.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[uint64]*node
	head       *node
	tail       *node
	maxEntries int
	size       atomic.Int64
	nodePool   sync.Pool
}

// NewResultCache creates a cache with configuration options.
func NewResultCache(opts ...Option) *ResultCache {
	c := &ResultCache{
		maxEntries: 256,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[uint64]*node)
	c.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return c
}

// Get implements Cache.
func (c *ResultCache) Get(_ context.Context, key uint64) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return n.value, true
}

// Put implements Cache.
func (c *ResultCache) Put(_ context.Context, key uint64, value any) {
	if c.maxEntries <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.value = value
		return
	}
	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	n := c.nodePool.Get().(*node)
	n.key = key
	n.value = value
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
	c.entries[key] = n
	c.size.Add(1)
}

// Purge implements Cache.
func (c *ResultCache) Purge(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for n := c.head; n != nil; {
		next := n.next
		n.reset()
		c.nodePool.Put(n)
		n = next
	}
	c.entries = make(map[uint64]*node)
	c.head, c.tail = nil, nil
	c.size.Store(0)
}

// Size implements Cache.
func (c *ResultCache) Size() int64 {
	return c.size.Load()
}

// evictOldest must be called with c.mu held.
func (c *ResultCache) evictOldest() {
	n := c.tail
	if n == nil {
		return
	}
	c.tail = n.prev
	if c.tail != nil {
		c.tail.next = nil
	} else {
		c.head = nil
	}
	delete(c.entries, n.key)
	n.reset()
	c.nodePool.Put(n)
	c.size.Add(-1)
}
