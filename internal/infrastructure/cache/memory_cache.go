package cache

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/greenmission/backend/internal/domain/shared"
)

// memEntry is a stored value with its expiry
type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache implements Cache using an in-memory map. It is suitable for
// single-instance deployments and testing. Expiry is evaluated against an
// injected Clock so tests can advance time without sleeping.
type MemoryCache struct {
	mu        sync.RWMutex
	entries   map[string]memEntry
	clock     shared.Clock
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryCache creates an in-memory cache and starts a background cleanup
// goroutine for expired entries.
func NewMemoryCache(clock shared.Clock) *MemoryCache {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	c := &MemoryCache{
		entries:  make(map[string]memEntry),
		clock:    clock,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get retrieves the raw bytes stored under key.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists {
		return nil, false, nil
	}
	if c.clock.Now().After(e.expiresAt) {
		return nil, false, nil // expired, treat as a miss
	}

	return e.data, true, nil
}

// Set stores value under key with the given expiry.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memEntry{
		data:      value,
		expiresAt: c.clock.Now().Add(ttl),
	}
	return nil
}

// Del removes the given keys.
func (c *MemoryCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

// DelPattern removes all keys matching a glob pattern.
func (c *MemoryCache) DelPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cleanupLoop periodically removes expired entries
func (c *MemoryCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *MemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
