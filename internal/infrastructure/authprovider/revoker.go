package authprovider

import (
	"context"
	"fmt"
	"time"

	"evalue-storefront/config"
	"evalue-storefront/pkg/cache"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:"

// Revoker remembers signed-out token ids until the tokens would expire anyway.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type RedisRevoker struct {
	client *redis.Client
}

// NewRedisClient builds a client with the connection timeouts used across services.
func NewRedisClient(cfg config.StoreConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,

		ConnMaxIdleTime: 30 * time.Minute,
	})
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client}
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// MemoryRevoker keeps revoked ids in the process cache.
type MemoryRevoker struct {
	cache cache.CacheService
}

func NewMemoryRevoker(c cache.CacheService) *MemoryRevoker {
	return &MemoryRevoker{cache: c}
}

func (r *MemoryRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.cache.Set(revokedPrefix+tokenID, true, ttl)
	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, found := r.cache.Get(revokedPrefix + tokenID)
	return found, nil
}
