package cache

import (
	"time"

	"github.com/ppiankov/pricelens/internal/model"
)

// DefaultResolutionTTL is how long a resolved lookup is served from memory
const DefaultResolutionTTL = 30 * time.Minute

// Entry is a cached lookup result
type Entry struct {
	Name      string
	Mode      model.GameMode
	Item      model.Item
	CreatedAt time.Time
}

// ResolutionCache maps (canonical name, game mode) to the catalog result
type ResolutionCache struct {
	mem *MemoryCache
}

// NewResolutionCache creates a resolution cache. A non-positive ttl uses
// DefaultResolutionTTL.
func NewResolutionCache(ttl time.Duration) *ResolutionCache {
	if ttl <= 0 {
		ttl = DefaultResolutionTTL
	}
	return &ResolutionCache{mem: NewMemoryCache(ttl)}
}

// Get returns the entry for name and mode if it is younger than the TTL
func (c *ResolutionCache) Get(name string, mode model.GameMode) (Entry, bool) {
	val, ok := c.mem.Get(Key(string(mode), name))
	if !ok {
		return Entry{}, false
	}
	return val.(Entry), true
}

// Put stores or overwrites the entry for name and mode
func (c *ResolutionCache) Put(name string, mode model.GameMode, item model.Item) Entry {
	e := Entry{Name: name, Mode: mode, Item: item, CreatedAt: time.Now()}
	c.mem.Set(Key(string(mode), name), e, 0)
	return e
}

// Clear drops every entry
func (c *ResolutionCache) Clear() {
	c.mem.Clear()
}

// Len returns the number of stored entries
func (c *ResolutionCache) Len() int {
	return c.mem.Len()
}
