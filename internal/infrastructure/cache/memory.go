// Package cache adapts go-cache to pkg/cache.CacheService.
package cache

import (
	"time"

	"evalue-storefront/pkg/cache"

	gocache "github.com/patrickmn/go-cache"
)

type goCache struct {
	items *gocache.Cache
}

// NewMemoryCache returns a CacheService whose entries default to ttl and are
// swept every cleanup interval. Expired entries are never returned, swept or not.
func NewMemoryCache(ttl, cleanup time.Duration) cache.CacheService {
	return &goCache{items: gocache.New(ttl, cleanup)}
}

func (c *goCache) Get(key string) (interface{}, bool) { return c.items.Get(key) }

func (c *goCache) Set(key string, value interface{}, ttl time.Duration) {
	c.items.Set(key, value, ttl)
}

func (c *goCache) Delete(key string) { c.items.Delete(key) }

func (c *goCache) Flush() { c.items.Flush() }

func (c *goCache) OnEvicted(fn func(key string, value interface{})) {
	c.items.OnEvicted(fn)
}
