package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCacheSetGet(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()
	key := PriceCacheKey("reference")

	price, err := c.GetPrice(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, price, "miss returns empty string")

	require.NoError(t, c.SetPrice(ctx, key, "85000000|1756700000", 10*time.Second))

	price, err = c.GetPrice(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "85000000|1756700000", price)
}

func TestInMemoryCacheExpiry(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()
	key := PriceCacheKey("reference")

	require.NoError(t, c.SetPrice(ctx, key, "85000000|1756700000", -time.Second))

	price, err := c.GetPrice(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, price, "expired entry reads as miss")
}

func TestInMemoryCacheDelete(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()
	key := PriceCacheKey("reference")

	require.NoError(t, c.SetPrice(ctx, key, "1", time.Minute))
	require.NoError(t, c.Delete(ctx, key))

	price, err := c.GetPrice(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, price)
}

// The in-memory cache is shared across concurrent HTTP requests when no
// Redis address is configured, so reads and writes must be safe under
// the race detector.
func TestInMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		key := PriceCacheKey(fmt.Sprintf("feed-%d", i%2))

		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.SetPrice(ctx, key, "85000000|1756700000", time.Millisecond)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = c.GetPrice(ctx, key)
			}
		}()
	}
	wg.Wait()
}
