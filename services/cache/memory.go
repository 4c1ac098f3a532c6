package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local CacheService backed by go-cache
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates an empty in-memory cache. Entries without an
// expiration never expire; expired entries are purged every cleanupInterval.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{cache: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

// Get retrieves a copy of the stored value
func (m *MemoryCache) Get(key string) ([]byte, error) {
	val, found := m.cache.Get(key)
	if !found {
		return nil, ErrMiss
	}
	data, ok := val.([]byte)
	if !ok {
		return nil, ErrMiss
	}
	return append([]byte(nil), data...), nil
}

// Set stores a copy of value; zero expiration keeps it for the process lifetime
func (m *MemoryCache) Set(key string, value []byte, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	m.cache.Set(key, append([]byte(nil), value...), expiration)
	return nil
}

// Delete removes a value; deleting an unknown key is not an error
func (m *MemoryCache) Delete(key string) error {
	m.cache.Delete(key)
	return nil
}
