package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *LocalCache {
	c, err := NewCache(Config{GCInterval: time.Minute})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestGetSet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key1", "value1", 0))
	v, err := c.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", v)
}

func TestGetMissing(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTTLExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ttl_key", "val", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	_, err := c.Get(ctx, "ttl_key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "k", "v", 0)
	_ = c.ZAdd(ctx, "k", 1, "m")
	require.NoError(t, c.Del(ctx, "k"))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.ZScore(ctx, "k", "m")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestZSet_OrderAndUpdate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.ZAdd(ctx, "board", 10, "a"))
	require.NoError(t, c.ZAdd(ctx, "board", 30, "b"))
	require.NoError(t, c.ZAdd(ctx, "board", 20, "c"))
	require.NoError(t, c.ZAdd(ctx, "board", 40, "a"))

	top, err := c.ZRevRange(ctx, "board", 0, -1)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "a", top[0].Member)
	assert.Equal(t, float64(40), top[0].Score)
	assert.Equal(t, "b", top[1].Member)
	assert.Equal(t, "c", top[2].Member)

	two, err := c.ZRevRange(ctx, "board", 0, 1)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	none, err := c.ZRevRange(ctx, "board", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	s, err := c.ZScore(ctx, "board", "c")
	require.NoError(t, err)
	assert.Equal(t, float64(20), s)
}

func TestClose_Twice(t *testing.T) {
	c, err := NewCache(Config{})
	require.NoError(t, err)
	c.Close()
	c.Close()
}
