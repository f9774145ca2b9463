package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process TTL cache backed by patrickmn/go-cache.
// Suitable for single-binary deployments and tests; entries are evicted by a
// background janitor.
type MemoryCache struct {
	inner *gocache.Cache
}

// defaultCleanupInterval is how often the janitor sweeps expired entries.
const defaultCleanupInterval = 10 * time.Minute

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache() Cache {
	return &MemoryCache{
		inner: gocache.New(gocache.NoExpiration, defaultCleanupInterval),
	}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := c.inner.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	if !ok {
		// Foreign entry type - treat as miss
		c.inner.Delete(key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.inner.Set(key, data, ttl)
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.inner.Delete(key)
	return nil
}

// Close does nothing; the janitor goroutine stops when the cache is
// garbage-collected.
func (c *MemoryCache) Close() error {
	return nil
}

// Ensure MemoryCache implements Cache.
var _ Cache = (*MemoryCache)(nil)
