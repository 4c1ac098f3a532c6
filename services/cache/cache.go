package cache

import (
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is unknown or expired
var ErrMiss = errors.New("cache miss")

// CacheService represents a byte cache keyed by string
type CacheService interface {
	// Get retrieves a value, or ErrMiss
	Get(key string) ([]byte, error)

	// Set stores a value with an expiration time; zero means no expiry
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
