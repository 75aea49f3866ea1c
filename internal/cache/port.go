package cache

import "time"

// Cache defines the port interface for time-bounded result caching.
// This interface follows the port-adapter pattern, allowing different
// cache implementations to be swapped without changing the fetcher logic.
//
// Keys are used verbatim: no normalization of case, trailing slashes
// or query strings is applied.
type Cache[V any] interface {
	// Get retrieves a value from the cache by key.
	// Returns the cached value and true if a live entry exists.
	// An entry whose TTL has elapsed is reported as a miss.
	Get(key string) (V, bool)

	// Set stores a value under key, overwriting any existing entry.
	// The entry expires ttl after the moment it is stored.
	Set(key string, value V, ttl time.Duration)
}
