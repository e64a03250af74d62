package repository

import (
	"context"
	"fmt"
	"time"

	"evalue-storefront/config"
	"evalue-storefront/internal/domain"
	"evalue-storefront/internal/infrastructure/authprovider"
	"evalue-storefront/internal/repository/memstore"
	"evalue-storefront/internal/repository/mongostore"
	"evalue-storefront/internal/repository/pgstore"
	"evalue-storefront/pkg/cache"
	"evalue-storefront/pkg/logger"
)

// Probe reports whether a backing service answers.
type Probe = func(ctx context.Context) error

// Backend bundles the configured document store with the token revoker,
// their health probes and shutdown hooks.
type Backend struct {
	Store   domain.DocumentStore
	Revoker authprovider.Revoker
	Probes  map[string]Probe
	closers []func()
}

// Close runs the shutdown hooks in reverse order of opening.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// Open connects the store selected by cfg.Driver. Redis backs token
// revocation when REDIS_ADDR is set; otherwise revokedCache does.
func Open(ctx context.Context, cfg config.StoreConfig, revokedCache cache.CacheService) (*Backend, error) {
	log := logger.Get()
	b := &Backend{Probes: make(map[string]Probe)}

	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := pgstore.NewPgxPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pgstore.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		b.Store = pgstore.NewStore(pool)
		b.Probes["postgres"] = pool.Ping
		b.closers = append(b.closers, pool.Close)
		log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.Store = mongostore.NewStore(client.Database(cfg.MongoDatabase))
		b.Probes["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		b.closers = append(b.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
			}
		})
		log.Info().Str("database", cfg.MongoDatabase).Msg("Successfully connected to MongoDB")

	default:
		b.Store = memstore.New()
		log.Warn().Msg("Using in-memory document store; data is lost on restart")
	}

	if cfg.RedisAddr == "" {
		b.Revoker = authprovider.NewMemoryRevoker(revokedCache)
		return b, nil
	}

	rdb := authprovider.NewRedisClient(cfg)
	if err := rdb.Ping(ctx).Err(); err != nil {
		b.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}
	b.Revoker = authprovider.NewRedisRevoker(rdb)
	b.Probes["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	b.closers = append(b.closers, func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis client")
		}
	})
	log.Info().Str("addr", cfg.RedisAddr).Msg("Token revocation backed by Redis")
	return b, nil
}
