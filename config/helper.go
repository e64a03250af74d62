package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// StoreConfig selects and configures the document store, the token
// revocation backend and the optional image bucket used by the seeder.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"memory"`

	// PostgreSQL
	DBUrl             string        `env:"DB_DSN"`
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"50"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"15m"`

	// MongoDB
	MongoURI      string        `env:"MONGODB_URI"`
	MongoDatabase string        `env:"MONGODB_DATABASE" envDefault:"evalue"`
	MongoTimeout  time.Duration `env:"MONGODB_TIMEOUT" envDefault:"10s"`

	// Redis holds revoked tokens; the in-memory cache is used when unset
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// R2 storage for product images
	R2AccountID       string        `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string        `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret string        `env:"R2_ACCESS_KEY_SECRET"`
	R2BucketName      string        `env:"R2_BUCKET_NAME"`
	R2PublicURL       string        `env:"R2_PUBLIC_URL"`
	R2Endpoint        string        `env:"R2_ENDPOINT"` // overrides the account endpoint, e.g. for MinIO
	R2UploadTimeout   time.Duration `env:"R2_UPLOAD_TIMEOUT" envDefault:"30s"`
}

func LoadStoreConfig() (*StoreConfig, error) {
	cfg := &StoreConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load store configuration from environment: %w", err)
	}
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	return cfg, nil
}

func (c StoreConfig) Validate() error {
	switch c.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.DBUrl == "" {
			return fmt.Errorf("DB_DSN is required when STORE_DRIVER=postgres")
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Driver)
	}
	return nil
}

// R2Enabled reports whether every R2 setting needed for uploads is present.
func (c StoreConfig) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}
