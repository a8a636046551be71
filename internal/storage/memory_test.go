package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	value := []byte(`[{"id":"k1"}]`)
	require.NoError(t, m.Set(ctx, "cart", value))
	value[0] = 'X'

	got, err := m.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"k1"}]`, string(got), "stored bytes must not alias the caller's slice")

	require.NoError(t, m.Del(ctx, "cart"))
	_, err = m.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRateLimitWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		exceeded, err := m.CheckRateLimit(ctx, "quote:s1", 2, time.Hour)
		require.NoError(t, err)
		assert.False(t, exceeded)
	}

	exceeded, err := m.CheckRateLimit(ctx, "quote:s1", 2, time.Hour)
	require.NoError(t, err)
	assert.True(t, exceeded)

	now = now.Add(time.Hour)
	exceeded, err = m.CheckRateLimit(ctx, "quote:s1", 2, time.Hour)
	require.NoError(t, err)
	assert.False(t, exceeded, "a new window starts once the previous one expired")
}
