package qr

import "sync"

// lru is a thread-safe, size-bounded cache with least-recently-used eviction.
type lru[V any] struct {
	capacity int
	mu       sync.Mutex
	items    map[string]*node[V]
	newest   *node[V]
	oldest   *node[V]
}

type node[V any] struct {
	key        string
	value      V
	prev, next *node[V]
}

func newLRU[V any](capacity int) *lru[V] {
	return &lru[V]{
		capacity: capacity,
		items:    make(map[string]*node[V]),
	}
}

func (c *lru[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.touch(n)
	return n.value, true
}

func (c *lru[V]) put(key string, value V) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.items[key]; ok {
		n.value = value
		c.touch(n)
		return
	}

	n := &node[V]{key: key, value: value}
	c.items[key] = n
	c.pushNewest(n)

	if len(c.items) > c.capacity {
		c.dropOldest()
	}
}

func (c *lru[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *lru[V]) touch(n *node[V]) {
	if n == c.newest {
		return
	}
	c.unlink(n)
	c.pushNewest(n)
}

func (c *lru[V]) pushNewest(n *node[V]) {
	n.next = c.newest
	n.prev = nil
	if c.newest != nil {
		c.newest.prev = n
	}
	c.newest = n
	if c.oldest == nil {
		c.oldest = n
	}
}

func (c *lru[V]) unlink(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.newest = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.oldest = n.prev
	}
}

func (c *lru[V]) dropOldest() {
	if c.oldest == nil {
		return
	}
	delete(c.items, c.oldest.key)
	c.unlink(c.oldest)
}
