package cache

import (
	"context"
	"log"
	"os"
	"time"
)

// Cache is the read-through cache used for nearby-orb queries and analytics
// snapshots. Staleness is bounded by the TTL the caller picks; correctness
// never depends on it (every write path hits the database directly).
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error
}

type CacheError string

func (e CacheError) Error() string { return string(e) }

// ErrCacheMiss indicates the key was not found in cache.
const ErrCacheMiss CacheError = "cache miss"

// NewFromEnv returns a Redis-backed cache when REDIS_ADDR is set, falling
// back to the in-memory cache for single-instance and dev deployments.
func NewFromEnv() Cache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("⚠️  REDIS_ADDR not set — using in-memory cache")
		return NewMemoryCache()
	}

	c, err := NewRedisCache(addr, os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		log.Printf("⚠️  Redis unreachable at %s (%v) — falling back to in-memory cache", addr, err)
		return NewMemoryCache()
	}
	log.Printf("✅ Redis cache connected: %s", addr)
	return c
}
