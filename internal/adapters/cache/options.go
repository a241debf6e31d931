package cache

// Option applies a configuration option to the ResultCache.
type Option func(*ResultCache)

// WithMaxEntries bounds the number of cached results.
// If n > 0 the oldest entry is evicted first once the bound is reached.
// If n <= 0 the cache is disabled and every lookup misses.
func WithMaxEntries(n int) Option {
	return func(c *ResultCache) {
		c.maxEntries = n
	}
}
