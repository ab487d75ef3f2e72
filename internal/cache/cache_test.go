package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) Cache {
	t.Helper()
	c, err := New(&Config{Provider: "memory"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCacheSetGetDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	data, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), data)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok, "expired entries read as misses even before the sweeper runs")
}

func TestMemoryCacheDefaultProvider(t *testing.T) {
	c, err := New(&Config{}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Health(context.Background()))
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(&Config{Provider: "memcached"}, zap.NewNop())
	assert.Error(t, err)
}

func TestJSONHelpers(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, SetJSON(ctx, c, "p", &payload{Name: "badges", Count: 13}, time.Minute))

	var out payload
	require.True(t, GetJSON(ctx, c, "p", &out))
	assert.Equal(t, "badges", out.Name)
	assert.Equal(t, 13, out.Count)

	var missing payload
	assert.False(t, GetJSON(ctx, c, "nope", &missing))
}

func TestGetJSONRejectsCorruptEntries(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "bad", []byte("{not json"), time.Minute))

	var out map[string]string
	assert.False(t, GetJSON(ctx, c, "bad", &out))
}
