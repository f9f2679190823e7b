package cache

import (
	"context"
	"encoding/json"
	"time"
)

// TTL tiers for cached copies of external records. The cache is strictly an
// optimization: entries are copies with a freshness bound, never the source
// of truth.
const (
	TTLShort    = 5 * time.Minute  // volatile per-user data
	TTLMedium   = 30 * time.Minute // semi-static lists
	TTLLong     = time.Hour        // rarely-changing catalogs
	TTLVeryLong = 24 * time.Hour   // near-static reference data
)

// Cache is a TTL-based key-value contract over a networked store.
// Implementations log their own failures; callers treat every error as a
// miss or a skipped write, never as a request failure.
type Cache interface {
	// Get returns the raw bytes stored under key. ok is false on a miss.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores value under key with the given expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Del removes the given keys. Absent keys are not an error.
	Del(ctx context.Context, keys ...string) error
	// DelPattern removes all keys matching a glob pattern in one batch.
	DelPattern(ctx context.Context, pattern string) error
	// Close releases any resources held by the cache.
	Close() error
}

// GetOrSet returns the value cached under key, or invokes fetch, stores the
// result with the given TTL, and returns it. Cache faults degrade
// gracefully: a failed or corrupt read falls through to fetch, and a failed
// write still returns the fresh value. Errors from fetch itself propagate
// unchanged, since the cache has no authority to invent data.
func GetOrSet[T any](ctx context.Context, c Cache, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	data, ok, err := c.Get(ctx, key)
	if ok && err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		// Corrupt entry: drop it and refetch.
		_ = c.Del(ctx, key)
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if data, err := json.Marshal(v); err == nil {
		_ = c.Set(ctx, key, data, ttl)
	}

	return v, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// GetJSON reads key and unmarshals it into v. ok is false on a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}
