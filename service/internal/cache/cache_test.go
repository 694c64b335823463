// internal/cache/cache_test.go
package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/templesim/engine"
	"github.com/jason-s-yu/templesim/service/internal/experiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseCache runs the experiment.Cache contract against c.
func exerciseCache(t *testing.T, c experiment.Cache, key string) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := experiment.Tally{Trials: 10, TotalAlpha: 3, OnlyAlpha: 3, TotalAny: 3, Epochs: 40, Truncated: 1}
	require.NoError(t, c.Set(ctx, key, want))
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseCache(t, m, "k")
	assert.Equal(t, 1, m.Len())

	var zero Memory
	exerciseCache(t, &zero, "k")
}

func TestMemoryServesRunner(t *testing.T) {
	m := NewMemory()
	r := &experiment.Runner{Trials: 100, Workers: 2, Seed: 3, Cache: m}
	first, err := r.Run(context.Background(), engine.DefaultRuleSet())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	second, err := r.Run(context.Background(), engine.DefaultRuleSet())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, m.Len())
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("TEMPLESIM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEMPLESIM_TEST_REDIS_ADDR not set")
	}
	r, err := NewRedis(context.Background(), addr, time.Minute)
	require.NoError(t, err)
	defer r.Close()
	exerciseCache(t, r, "test:"+uuid.NewString())
}

func TestRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedis(ctx, "127.0.0.1:1", time.Minute)
	assert.ErrorContains(t, err, "ping redis")
}
