package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyCache wraps a Cache and fails selected operations.
type faultyCache struct {
	Cache
	failGet bool
	failSet bool
}

func (f *faultyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errors.New("store unreachable")
	}
	return f.Cache.Get(ctx, key)
}

func (f *faultyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.failSet {
		return errors.New("store unreachable")
	}
	return f.Cache.Set(ctx, key, value, ttl)
}

func TestGetOrSet(t *testing.T) {
	ctx := context.Background()

	type member struct {
		Name string `json:"name"`
	}

	t.Run("fetches once while the entry is live", func(t *testing.T) {
		c := NewMemoryCache(nil)
		defer c.Close()

		calls := 0
		fetch := func(ctx context.Context) (member, error) {
			calls++
			return member{Name: "Eco Shop"}, nil
		}

		first, err := GetOrSet(ctx, c, "airtable:member:eco-shop", TTLMedium, fetch)
		require.NoError(t, err)
		second, err := GetOrSet(ctx, c, "airtable:member:eco-shop", TTLMedium, fetch)
		require.NoError(t, err)

		assert.Equal(t, member{Name: "Eco Shop"}, first)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, calls)
	})

	t.Run("fetches again after the TTL elapses", func(t *testing.T) {
		clock := &stepClock{t: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}
		c := NewMemoryCache(clock)
		defer c.Close()

		calls := 0
		fetch := func(ctx context.Context) (member, error) {
			calls++
			return member{Name: "Eco Shop"}, nil
		}

		_, err := GetOrSet(ctx, c, "k", TTLShort, fetch)
		require.NoError(t, err)
		_, err = GetOrSet(ctx, c, "k", TTLShort, fetch)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)

		clock.Advance(TTLShort + time.Second)

		_, err = GetOrSet(ctx, c, "k", TTLShort, fetch)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("read fault degrades to fetch", func(t *testing.T) {
		backing := NewMemoryCache(nil)
		defer backing.Close()
		c := &faultyCache{Cache: backing, failGet: true}

		v, err := GetOrSet(ctx, c, "k", TTLShort, func(ctx context.Context) (member, error) {
			return member{Name: "Fresh"}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, member{Name: "Fresh"}, v)
	})

	t.Run("write fault still returns the fresh value", func(t *testing.T) {
		backing := NewMemoryCache(nil)
		defer backing.Close()
		c := &faultyCache{Cache: backing, failSet: true}

		v, err := GetOrSet(ctx, c, "k", TTLShort, func(ctx context.Context) (member, error) {
			return member{Name: "Fresh"}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, member{Name: "Fresh"}, v)
	})

	t.Run("fetch errors propagate", func(t *testing.T) {
		c := NewMemoryCache(nil)
		defer c.Close()

		_, err := GetOrSet(ctx, c, "k", TTLShort, func(ctx context.Context) (member, error) {
			return member{}, errors.New("airtable down")
		})

		assert.EqualError(t, err, "airtable down")
	})

	t.Run("corrupt entry is dropped and refetched", func(t *testing.T) {
		c := NewMemoryCache(nil)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", []byte("{not json"), TTLShort))

		v, err := GetOrSet(ctx, c, "k", TTLShort, func(ctx context.Context) (member, error) {
			return member{Name: "Recovered"}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, member{Name: "Recovered"}, v)
	})
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(nil)
	defer c.Close()

	type entry struct {
		N int `json:"n"`
	}

	require.NoError(t, SetJSON(ctx, c, "k", entry{N: 7}, TTLShort))

	var got entry
	ok, err := GetJSON(ctx, c, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, got.N)

	ok, err = GetJSON(ctx, c, "missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
