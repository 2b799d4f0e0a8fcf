package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// Database
	DatabaseURL string

	// Transactions
	TxTimeout    time.Duration // bound on one apply/revoke unit of work
	TxMaxRetries int           // serialization-conflict retries before surfacing a storage error

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// OIDC bearer tokens for mutating routes (disabled when issuer is empty)
	OIDCIssuer   string
	OIDCClientID string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Rate limiting
	RateLimitMax int    // requests per minute per IP
	RedisURL     string // shared limiter storage; in-memory when empty

	// Jobs
	ReconcileInterval time.Duration // 0 disables the counter reconciler

	// Features
	SeedDevData bool // seed sample announcements in development
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:               getEnv("ENV", "development"),
		ServerAddr:        getEnv("SERVER_ADDR", ":3003"),
		DatabaseURL:       getEnv("DATABASE_URL", "postgres://localhost:5432/subvention?sslmode=disable"),
		TxTimeout:         getEnvDuration("TX_TIMEOUT", 30*time.Second),
		TxMaxRetries:      getEnvInt("TX_MAX_RETRIES", 5),
		TLSEnabled:        getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:       getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:        getEnv("TLS_KEY_FILE", ""),
		OIDCIssuer:        getEnv("OIDC_ISSUER", ""),
		OIDCClientID:      getEnv("OIDC_CLIENT_ID", ""),
		CORSOrigins:       getEnv("CORS_ORIGINS", ""),
		RateLimitMax:      getEnvInt("RATE_LIMIT_MAX", 100),
		RedisURL:          getEnv("REDIS_URL", ""),
		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 10*time.Minute),
		SeedDevData:       getEnv("SEED_DEV_DATA", "") != "",
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsAuthEnabled returns true if mutating routes require a bearer token.
func (c *Config) IsAuthEnabled() bool {
	return c.OIDCIssuer != ""
}
