// Package cache stores raw registry responses between runs.
//
// Caching is opt-in: the default backend is [NullCache], which keeps
// discovery at exactly one request per registry. [FileCache] suits a single
// workstation; [RedisCache] lets several apiscout servers share responses.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss with (nil, false, nil); errors are reserved for backend
// failures. A ttl of 0 passed to Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend for [Open].
type Options struct {
	Backend string // "none" (default), "file" or "redis"
	Dir     string // FileCache directory
	Redis   RedisOptions
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		return NewFileCache(opts.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
