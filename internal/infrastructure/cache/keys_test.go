package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "airtable:members", Key(ServiceAirtable, "members"))
	assert.Equal(t, "clerk:user:u_123", Key(ServiceClerk, "user", "u_123"))
	assert.Equal(t, "stripe:subscription:sub_1:items", Key(ServiceStripe, "subscription", "sub_1", "items"))
}

func TestPattern(t *testing.T) {
	assert.Equal(t, "airtable:members:*", Pattern(ServiceAirtable, "members"))
}

func TestOptionsKey(t *testing.T) {
	type opts struct {
		Category string `json:"category,omitempty"`
		City     string `json:"city,omitempty"`
		Page     int    `json:"page,omitempty"`
	}

	t.Run("deterministic for equal options", func(t *testing.T) {
		a := OptionsKey(ServiceAirtable, "members", opts{Category: "solar", Page: 2})
		b := OptionsKey(ServiceAirtable, "members", opts{Category: "solar", Page: 2})
		assert.Equal(t, a, b)
	})

	t.Run("distinct for distinct options", func(t *testing.T) {
		a := OptionsKey(ServiceAirtable, "members", opts{Category: "solar"})
		b := OptionsKey(ServiceAirtable, "members", opts{Category: "wind"})
		assert.NotEqual(t, a, b)
	})

	t.Run("stays inside the members namespace", func(t *testing.T) {
		k := OptionsKey(ServiceAirtable, "members", opts{City: "portland"})
		assert.Regexp(t, `^airtable:members:[A-Za-z0-9_-]+$`, k)
	})
}
