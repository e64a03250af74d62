package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"evalue-storefront/config"
	"evalue-storefront/internal/infrastructure/authprovider"
	"evalue-storefront/internal/infrastructure/cache"
	"evalue-storefront/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	be, err := Open(context.Background(), config.StoreConfig{Driver: config.DriverMemory}, cache.NewMemoryCache(time.Minute, time.Minute))
	require.NoError(t, err)
	defer be.Close()

	assert.IsType(t, &memstore.Store{}, be.Store)
	assert.IsType(t, &authprovider.MemoryRevoker{}, be.Revoker)
	assert.Empty(t, be.Probes)
}

func TestOpen_RedisUnreachable(t *testing.T) {
	cfg := config.StoreConfig{Driver: config.DriverMemory, RedisAddr: "127.0.0.1:1"}
	_, err := Open(context.Background(), cfg, cache.NewMemoryCache(time.Minute, time.Minute))
	assert.ErrorContains(t, err, "redis")
}

func TestBackend_CloseRunsInReverse(t *testing.T) {
	var order []int
	be := &Backend{closers: []func(){
		func() { order = append(order, 1) },
		func() { order = append(order, 2) },
	}}
	be.Close()
	assert.Equal(t, []int{2, 1}, order)
}

// Runs against a live server when REDIS_TEST_ADDR is set.
func TestOpen_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	be, err := Open(ctx, config.StoreConfig{Driver: config.DriverMemory, RedisAddr: addr}, cache.NewMemoryCache(time.Minute, time.Minute))
	require.NoError(t, err)
	defer be.Close()

	require.Contains(t, be.Probes, "redis")
	require.NoError(t, be.Probes["redis"](ctx))

	require.NoError(t, be.Revoker.Revoke(ctx, "jti-test", time.Minute))
	revoked, err := be.Revoker.IsRevoked(ctx, "jti-test")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = be.Revoker.IsRevoked(ctx, "jti-other")
	require.NoError(t, err)
	assert.False(t, revoked)
}
