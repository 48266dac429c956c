package quotes

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "fx:EUR/USD", 1.08, time.Minute))

	v, ok := c.Get(ctx, "fx:EUR/USD")
	assert.True(t, ok)
	assert.Equal(t, 1.08, v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "fx:EUR/USD")
	assert.False(t, ok)
}

func TestMemoryCache_Flush(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", 1, time.Hour))
	c.Flush()
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
}

// Runs only against a real server: RISKBUDGET_TEST_REDIS=localhost:6379.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("RISKBUDGET_TEST_REDIS")
	if addr == "" {
		t.Skip("RISKBUDGET_TEST_REDIS not set")
	}

	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr, Prefix: "riskbudget-test"}, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "metal:XAUUSD", 2331.5, time.Minute))
	v, ok := c.Get(ctx, "metal:XAUUSD")
	assert.True(t, ok)
	assert.Equal(t, 2331.5, v)

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)
}
