package repository

import "time"

// CacheOption applies a configuration option to a CachedStore.
type CacheOption func(*CachedStore)

// WithTTL sets how long cached reads stay fresh. Non-positive values
// are ignored and the default is kept.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedStore) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CachedStore) {
		if now != nil {
			c.now = now
		}
	}
}
