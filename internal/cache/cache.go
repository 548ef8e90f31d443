// Package cache stores recommendation summaries keyed by link hash.
package cache

import (
	"context"
	"time"

	"github.com/bilgisen/veritas/internal/config"
)

// Cache is a string key/value store with per-entry expiry.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Clear(ctx context.Context) error
	Close() error
}

// New returns a RedisCache when REDIS_URL is set and a MemoryCache otherwise.
func New(cfg *config.Config) (Cache, error) {
	if cfg.RedisURL == "" {
		return NewMemoryCache(), nil
	}
	rc, err := NewRedisCache(cfg.RedisURL, cfg.RedisPrefix)
	if err != nil {
		return nil, err
	}
	return rc, nil
}
