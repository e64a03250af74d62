package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenExpiry)
	assert.Equal(t, 16, cfg.MembershipFanout)
	assert.Equal(t, "v19.0", cfg.FacebookAPIVersion)
	assert.Equal(t, 10*time.Second, cfg.Store.MongoTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("VIEW_TTL", "45m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("MEMBERSHIP_FANOUT", "not-a-number")
	t.Setenv("STORE_DRIVER", " Postgres ")
	t.Setenv("DB_DSN", "postgres://localhost/evalue")
	t.Setenv("DB_MAX_CONNS", "8")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 45*time.Minute, cfg.ViewTTL)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 16, cfg.MembershipFanout)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, int32(8), cfg.Store.DBMaxConns)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_BadStoreValue(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestStoreConfig_Validate(t *testing.T) {
	cases := []struct {
		name string
		cfg  StoreConfig
		ok   bool
	}{
		{"memory", StoreConfig{Driver: DriverMemory}, true},
		{"postgres without dsn", StoreConfig{Driver: DriverPostgres}, false},
		{"postgres min over max", StoreConfig{Driver: DriverPostgres, DBUrl: "x", DBMinConns: 5, DBMaxConns: 2}, false},
		{"mongo without uri", StoreConfig{Driver: DriverMongo}, false},
		{"mongo", StoreConfig{Driver: DriverMongo, MongoURI: "mongodb://localhost"}, true},
		{"unknown", StoreConfig{Driver: "sqlite"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{Env: "production", JWTSecret: "default_secret_CHANGE_ME", MembershipFanout: 1, Store: StoreConfig{Driver: DriverMemory}}
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "real"
	assert.NoError(t, cfg.Validate())

	cfg.MembershipFanout = 0
	assert.Error(t, cfg.Validate())
}

func TestStoreConfig_R2Enabled(t *testing.T) {
	cfg := StoreConfig{R2AccountID: "a", R2AccessKeyID: "k", R2AccessKeySecret: "s", R2BucketName: "b"}
	assert.False(t, cfg.R2Enabled())
	cfg.R2PublicURL = "https://cdn"
	assert.True(t, cfg.R2Enabled())
}
