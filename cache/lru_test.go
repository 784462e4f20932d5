package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRURoundTrip(t *testing.T) {
	c := NewLRU()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "rendered page"))

	got, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "rendered page", got)
}

func TestLRUMiss(t *testing.T) {
	c := NewLRU()

	_, found, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLRUEvictsBeyondCapacity(t *testing.T) {
	c := NewLRU(WithCapacity(3))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), "v"))
	}

	assert.Equal(t, 3, c.Len())
	_, found, _ := c.Get(ctx, "k0")
	assert.False(t, found, "oldest entry is evicted first")
	_, found, _ = c.Get(ctx, "k3")
	assert.True(t, found)
}

func TestLRUEvictionRespectsRecency(t *testing.T) {
	c := NewLRU(WithCapacity(2))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1"))
	require.NoError(t, c.Set(ctx, "b", "2"))

	// Touch "a" so "b" becomes the eviction candidate.
	_, _, _ = c.Get(ctx, "a")
	require.NoError(t, c.Set(ctx, "c", "3"))

	_, found, _ := c.Get(ctx, "a")
	assert.True(t, found)
	_, found, _ = c.Get(ctx, "b")
	assert.False(t, found)
}

func TestLRUExpiresEntries(t *testing.T) {
	now := time.Now()
	c := NewLRU(WithTTL(time.Minute))
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))

	now = now.Add(59 * time.Second)
	_, found, _ := c.Get(ctx, "k")
	assert.True(t, found, "entry alive inside the TTL")

	now = now.Add(2 * time.Second)
	_, found, _ = c.Get(ctx, "k")
	assert.False(t, found, "entry expired past the TTL")
	assert.Equal(t, 0, c.Len(), "expired entry is dropped on read")
}

func TestLRUPurgeExpired(t *testing.T) {
	now := time.Now()
	c := NewLRU(WithTTL(time.Minute))
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "old", "v"))
	now = now.Add(30 * time.Second)
	require.NoError(t, c.Set(ctx, "fresh", "v"))

	now = now.Add(45 * time.Second) // "old" is 75s old, "fresh" 45s
	purged := c.PurgeExpired()

	assert.Equal(t, 1, purged)
	assert.Equal(t, 1, c.Len())
	_, found, _ := c.Get(ctx, "fresh")
	assert.True(t, found)
}

func TestLRUSetUpdatesExisting(t *testing.T) {
	c := NewLRU()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "one"))
	require.NoError(t, c.Set(ctx, "k", "two"))

	got, found, _ := c.Get(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, "two", got)
	assert.Equal(t, 1, c.Len())
}
