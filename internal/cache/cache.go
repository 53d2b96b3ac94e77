// Package cache stores fetched catalog documents so that repeated catalog
// loads do not hit the remote source on every request.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ppiankov/wildaware/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error // ttl 0 uses the backend default
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from a document URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "wildaware:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache backend named in cfg
func New(cfg model.CacheConfig, ttl time.Duration) (Cache, error) {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(ttl, 10*time.Minute), nil
	case "layered":
		dir := cfg.Dir
		if dir == "" {
			dir = filepath.Join(defaultCacheRoot(), "wildaware")
		}
		return NewLayeredCache(ttl, dir, ttl*4), nil
	case "redis":
		return NewRedisCache(RedisOptions{Address: cfg.RedisAddr, DB: cfg.RedisDB, DefaultTTL: ttl}), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: memory, layered, redis)", cfg.Backend)
	}
}
