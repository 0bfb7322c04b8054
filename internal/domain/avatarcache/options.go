package avatarcache

// Option applies a configuration option to the in-memory cache.
type Option func(*inMemoryCache)

// WithMaxSize bounds the number of cached avatars.
// If maxSize > 0 the oldest capture is evicted to make room.
// If maxSize <= 0 the cache is unbounded and only Forget removes entries.
func WithMaxSize(maxSize int) Option {
	return func(c *inMemoryCache) {
		c.maxSize = maxSize
	}
}
