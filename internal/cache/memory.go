package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps recently rendered reports in process memory, so a batch
// run that sees the same document twice skips both disk and reparse.
type MemoryCache struct {
	entries *gocache.Cache
}

// NewMemoryCache creates a memory cache. Expired reports are swept at half
// the default TTL, at least once a minute.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	sweep := defaultTTL / 2
	if sweep < time.Minute {
		sweep = time.Minute
	}
	return &MemoryCache{entries: gocache.New(defaultTTL, sweep)}
}

// Get retrieves a rendered report
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.entries.Get(key)
	if !found {
		return nil, false
	}
	report, ok := val.([]byte)
	if !ok {
		// A foreign value under our key is treated as a miss and evicted
		c.entries.Delete(key)
		return nil, false
	}
	return report, true
}

// Set stores a rendered report; a zero TTL uses the cache default
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.entries.Set(key, value, ttl)
	return nil
}

// Delete removes a report
func (c *MemoryCache) Delete(key string) error {
	c.entries.Delete(key)
	return nil
}

// Clear removes all reports
func (c *MemoryCache) Clear() error {
	c.entries.Flush()
	return nil
}

// Len reports how many entries are currently held, expired ones included
// until the next sweep
func (c *MemoryCache) Len() int {
	return c.entries.ItemCount()
}
