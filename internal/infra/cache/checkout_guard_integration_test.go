//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"perfumeshop/internal/infra/cache"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	addr, err := c.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCheckoutGuard(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	g := cache.NewCheckoutGuard(rdb, time.Minute)

	ok, err := g.Acquire(ctx, 1, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	// 同じキーの2本目は取れない
	ok, err = g.Acquire(ctx, 1, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// ユーザーが違えば別物
	ok, err = g.Acquire(ctx, 2, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, g.Release(ctx, 1, "k"))
	ok, err = g.Acquire(ctx, 1, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckoutGuard_Expires(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	g := cache.NewCheckoutGuard(rdb, time.Second)

	ok, err := g.Acquire(ctx, 1, "k")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		ok, err := g.Acquire(ctx, 1, "k")
		return err == nil && ok
	}, 5*time.Second, 200*time.Millisecond)
}

func TestNoopGuard(t *testing.T) {
	var g cache.NoopGuard
	ok, err := g.Acquire(context.Background(), 1, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, g.Release(context.Background(), 1, "k"))
}
