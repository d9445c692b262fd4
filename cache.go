package pubsite

import "sync"

// VariantCache is an in-memory map of resolved image sets keyed by content
// and layout hash. Entries never go stale: a different source or layout is a
// different key.
type VariantCache struct {
	mu   sync.RWMutex
	sets map[string]*ImageVariantSet
}

// NewVariantCache creates an empty VariantCache.
func NewVariantCache() *VariantCache {
	return &VariantCache{sets: make(map[string]*ImageVariantSet)}
}

// Get returns the set stored under key.
func (c *VariantCache) Get(key string) (*ImageVariantSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set, ok := c.sets[key]
	return set, ok
}

// Put stores set under key, replacing any previous entry.
func (c *VariantCache) Put(key string, set *ImageVariantSet) {
	c.mu.Lock()
	c.sets[key] = set
	c.mu.Unlock()
}
