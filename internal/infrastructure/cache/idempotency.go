package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/greenmission/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// IdempotencyStore records webhook event IDs that have already been
// processed, so redelivered events are acknowledged without reprocessing.
type IdempotencyStore interface {
	// MarkProcessed marks an event as processed with a TTL. It returns true
	// if the event was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
}

// RedisIdempotencyStore implements IdempotencyStore using Redis SETNX, so
// the mark is atomic across instances sharing one Redis.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore creates a store sharing an existing Redis client.
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "webhook:event:"
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed marks an event as processed using SETNX in a single atomic
// operation.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	key := s.keyPrefix + eventID

	result, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event as processed: %w", err)
	}

	return result, nil
}

// InMemoryIdempotencyStore implements IdempotencyStore with a map. Suitable
// for single-instance deployments and testing.
type InMemoryIdempotencyStore struct {
	mu    sync.Mutex
	marks map[string]time.Time
	clock shared.Clock
}

// NewInMemoryIdempotencyStore creates an in-memory idempotency store.
func NewInMemoryIdempotencyStore(clock shared.Clock) *InMemoryIdempotencyStore {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &InMemoryIdempotencyStore{
		marks: make(map[string]time.Time),
		clock: clock,
	}
}

// MarkProcessed marks an event as processed with a TTL.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if expiresAt, exists := s.marks[eventID]; exists && now.Before(expiresAt) {
		return false, nil // already processed
	}

	s.marks[eventID] = now.Add(ttl)
	return true, nil
}

var (
	_ IdempotencyStore = (*RedisIdempotencyStore)(nil)
	_ IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
)
