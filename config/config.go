package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	Env               string
	LogLevel          string
	JWTSecret         string
	AllowedOrigin     string
	AccessTokenExpiry time.Duration
	// Cache
	CacheCatalogTTL time.Duration
	ViewTTL         time.Duration
	// Accessor fan-out limit for per-product reads
	MembershipFanout int
	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
	// Facebook Conversions API; disabled without a pixel id
	FacebookPixelID     string
	FacebookAccessToken string
	FacebookAPIVersion  string
	Currency            string
	// JSON catalog imported at startup, mainly for the memory driver
	CatalogSeedFile string
	// Backends
	Store StoreConfig
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env for local dev, system env vars otherwise
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	return cfg
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	store, err := LoadStoreConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		JWTSecret:         getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		AccessTokenExpiry: getDurationEnv("ACCESS_TOKEN_EXPIRY", time.Hour*24), // Default 24h

		// Catalog is re-read at most every 5m, mounted views live 30m
		CacheCatalogTTL: getDurationEnv("CACHE_CATALOG_TTL", 5*time.Minute),
		ViewTTL:         getDurationEnv("VIEW_TTL", 30*time.Minute),

		MembershipFanout: getIntEnv("MEMBERSHIP_FANOUT", 16),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		FacebookPixelID:     getEnv("FB_PIXEL_ID", ""),
		FacebookAccessToken: getEnv("FB_ACCESS_TOKEN", ""),
		FacebookAPIVersion:  getEnv("FB_API_VERSION", "v19.0"),
		Currency:            getEnv("CURRENCY", "USD"),

		CatalogSeedFile: getEnv("CATALOG_SEED_FILE", ""),

		Store: *store,
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		if c.Env == "production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	if c.MembershipFanout < 1 {
		return fmt.Errorf("MEMBERSHIP_FANOUT must be at least 1, got %d", c.MembershipFanout)
	}
	return c.Store.Validate()
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}
