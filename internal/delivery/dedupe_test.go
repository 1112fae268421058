package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeduper(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d := NewMemoryDeduper()
	d.now = func() time.Time { return now }

	ok, err := d.Claim(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "first claim wins")

	ok, err = d.Claim(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "second claim within ttl is a duplicate")

	now = now.Add(time.Hour)
	ok, err = d.Claim(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "claim expires after ttl")

	require.NoError(t, d.Release(ctx, "k"))
	ok, err = d.Claim(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "released key can be claimed again")
}

func TestMemoryDeduperSweepsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d := NewMemoryDeduper()
	d.now = func() time.Time { return now }

	for _, k := range []string{"a", "b", "c"} {
		_, err := d.Claim(ctx, k, time.Minute)
		require.NoError(t, err)
	}
	now = now.Add(2 * time.Minute)
	_, err := d.Claim(ctx, "d", time.Minute)
	require.NoError(t, err)

	assert.Len(t, d.claims, 1)
}

func TestKey(t *testing.T) {
	a := Key("Owner@Example.com ", "B", "2882000.00")
	b := Key("owner@example.com", "B", "2882000.00")
	c := Key("owner@example.com", "C", "2882000.00")
	d := Key("owner@example.com", "B2", "882000.00")

	assert.Equal(t, a, b)
	assert.NotEqual(t, b, c)
	assert.NotEqual(t, b, d, "part boundaries are significant")
	assert.Len(t, a, 64)
}
