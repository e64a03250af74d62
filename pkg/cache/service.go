package cache

import "time"

// CacheService is a process-local TTL store. The storefront keeps the
// catalog, mounted views, membership views and revoked token ids in one each.
type CacheService interface {
	// Get reports the live value for key, or nil and false.
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	// Delete removes key and runs the eviction callback for it.
	Delete(key string)
	Flush()
	// OnEvicted registers fn for expired and deleted entries. Flush does not call it.
	OnEvicted(fn func(key string, value interface{}))
}

// Lookup is Get with the value asserted to T. A value of another type counts as a miss.
func Lookup[T any](c CacheService, key string) (T, bool) {
	val, found := c.Get(key)
	if !found {
		var zero T
		return zero, false
	}
	v, ok := val.(T)
	return v, ok
}
