package stats

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCounter(t *testing.T) (*Counter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	c := New(rc)
	c.now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }
	return c, mr
}

func TestIncrAndTotals(t *testing.T) {
	c, mr := newCounter(t)
	ctx := context.Background()
	require.NoError(t, c.Incr(ctx, "lookup"))
	require.NoError(t, c.Incr(ctx, "lookup"))
	require.NoError(t, c.Incr(ctx, "sites"))

	tot, err := c.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"lookup": 2, "sites": 1}, tot.Total)
	assert.Equal(t, map[string]int64{"lookup": 2, "sites": 1}, tot.Today)

	assert.True(t, mr.Exists("clubip:stats:daily:20261014"))
	assert.Equal(t, 48*time.Hour, mr.TTL("clubip:stats:daily:20261014"))
}

func TestTodayRollsOver(t *testing.T) {
	c, _ := newCounter(t)
	ctx := context.Background()
	require.NoError(t, c.Incr(ctx, "site"))
	c.now = func() time.Time { return time.Date(2026, 10, 15, 0, 1, 0, 0, time.UTC) }

	tot, err := c.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tot.Total["site"])
	assert.Empty(t, tot.Today)
}

func TestNilClientIsNoop(t *testing.T) {
	c := New(nil)
	assert.NoError(t, c.Incr(context.Background(), "lookup"))
	tot, err := c.Totals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tot.Total)

	var none *Counter
	assert.NoError(t, none.Incr(context.Background(), "lookup"))
}

func TestUnreachableRedis(t *testing.T) {
	rc := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rc.Close() })
	c := New(rc)
	assert.Error(t, c.Incr(context.Background(), "lookup"))
	_, err := c.Totals(context.Background())
	assert.Error(t, err)
}
