package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCache(t *testing.T, c Cache, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, c.Set(context.Background(), k, []byte("v"), time.Minute))
	}
}

func assertGone(t *testing.T, c Cache, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, ok, _ := c.Get(context.Background(), k)
		assert.False(t, ok, "expected %s to be purged", k)
	}
}

func assertKept(t *testing.T, c Cache, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, ok, _ := c.Get(context.Background(), k)
		assert.True(t, ok, "expected %s to survive", k)
	}
}

func TestInvalidator(t *testing.T) {
	ctx := context.Background()

	t.Run("user.updated purges the user entry and user lists", func(t *testing.T) {
		c := NewMemoryCache(nil)
		defer c.Close()
		seedCache(t, c,
			"clerk:user:u_1",
			"clerk:users:all",
			"clerk:org:org_1",
		)

		NewInvalidator(c, nil).Invalidate(ctx, "user.updated", EventRefs{UserID: "u_1"})

		assertGone(t, c, "clerk:user:u_1", "clerk:users:all")
		assertKept(t, c, "clerk:org:org_1")
	})

	t.Run("subscription.updated purges subscription and customer entries", func(t *testing.T) {
		c := NewMemoryCache(nil)
		defer c.Close()
		seedCache(t, c,
			"stripe:subscription:sub_1",
			"stripe:customer:cus_1",
			"stripe:subscriptions:cus_1",
			"stripe:prices",
		)

		NewInvalidator(c, nil).Invalidate(ctx, "customer.subscription.updated", EventRefs{
			SubscriptionID: "sub_1",
			CustomerID:     "cus_1",
		})

		assertGone(t, c, "stripe:subscription:sub_1", "stripe:customer:cus_1", "stripe:subscriptions:cus_1")
		assertKept(t, c, "stripe:prices")
	})

	t.Run("member record write purges all list permutations and featured", func(t *testing.T) {
		c := NewMemoryCache(nil)
		defer c.Close()
		seedCache(t, c,
			"airtable:members:b3B0aW9ucw",
			"airtable:members:YW5vdGhlcg",
			"airtable:member:eco-shop",
			"airtable:featured-members",
			"airtable:member:other-biz",
			"clerk:user:u_1",
		)

		NewInvalidator(c, nil).InvalidateMembers(ctx, "eco-shop")

		assertGone(t, c,
			"airtable:members:b3B0aW9ucw",
			"airtable:members:YW5vdGhlcg",
			"airtable:member:eco-shop",
			"airtable:featured-members",
		)
		assertKept(t, c, "airtable:member:other-biz", "clerk:user:u_1")
	})

	t.Run("unknown event purges nothing", func(t *testing.T) {
		c := NewMemoryCache(nil)
		defer c.Close()
		seedCache(t, c, "airtable:member:eco-shop")

		NewInvalidator(c, nil).Invalidate(ctx, "session.created", EventRefs{})

		assertKept(t, c, "airtable:member:eco-shop")
	})

	t.Run("invoice events purge only the customer entry", func(t *testing.T) {
		c := NewMemoryCache(nil)
		defer c.Close()
		seedCache(t, c, "stripe:customer:cus_1", "stripe:subscription:sub_1")

		NewInvalidator(c, nil).Invalidate(ctx, "invoice.payment_failed", EventRefs{CustomerID: "cus_1"})

		assertGone(t, c, "stripe:customer:cus_1")
		assertKept(t, c, "stripe:subscription:sub_1")
	})
}

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark wins, second is a duplicate", func(t *testing.T) {
		s := NewInMemoryIdempotencyStore(nil)

		first, err := s.MarkProcessed(ctx, "evt_1", time.Hour)
		require.NoError(t, err)
		second, err := s.MarkProcessed(ctx, "evt_1", time.Hour)
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
	})

	t.Run("mark expires after TTL", func(t *testing.T) {
		clock := &stepClock{t: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}
		s := NewInMemoryIdempotencyStore(clock)

		_, err := s.MarkProcessed(ctx, "evt_1", time.Minute)
		require.NoError(t, err)
		clock.Advance(2 * time.Minute)

		again, err := s.MarkProcessed(ctx, "evt_1", time.Minute)
		require.NoError(t, err)
		assert.True(t, again)
	})
}
