package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-memory TTL cache with lazy eviction: expired entries are
// dropped when read, there is no background sweep. Safe for concurrent use.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries live for defaultTTL
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, 0),
	}
}

// Get returns a live value. An expired entry is evicted and reported absent.
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	if val, found := c.cache.Get(key); found {
		return val, true
	}
	c.cache.Delete(key)
	return nil, false
}

// Set stores or overwrites a value. A zero ttl uses the default.
func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Len returns the number of stored entries, including expired ones not yet read
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
