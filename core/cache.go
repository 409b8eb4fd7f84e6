package core

import "sync"

// instanceCache memoizes one built instance per type. Entries are never
// replaced or evicted.
type instanceCache struct {
	mu    sync.RWMutex
	items map[TypeID]any
}

func newInstanceCache() *instanceCache {
	return &instanceCache{items: make(map[TypeID]any)}
}

func (c *instanceCache) has(t TypeID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[t]
	return ok
}

func (c *instanceCache) get(t TypeID) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[t]
	return v, ok
}

func (c *instanceCache) put(t TypeID, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[t] = v
}
