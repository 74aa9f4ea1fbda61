// Package cache holds the advisory analytics cache. A miss or a cache
// failure never fails a request; callers recompute from the entity store.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is returned when the requested key is not cached.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheKeyEmpty is returned when an empty key is provided.
	ErrCacheKeyEmpty = errors.New("cache: key cannot be empty")

	// ErrCacheSerialization is returned when a value cannot be encoded or decoded.
	ErrCacheSerialization = errors.New("cache: serialization failed")
)

// Key prefixes for analytics entries.
const (
	PrefixStudentStats    = "stats:student:"
	PrefixFacultyStats    = "stats:faculty:"
	PrefixDepartmentStats = "stats:department:"
	PrefixInstituteStats  = "stats:institute:"
	PrefixPlatformStats   = "stats:platform"
)

// Cache stores JSON-encodable values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Noop never stores anything. It is used when Redis is disabled.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string, interface{}) error { return ErrCacheMiss }

// Set discards the value.
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }

// Delete does nothing.
func (Noop) Delete(context.Context, ...string) error { return nil }
