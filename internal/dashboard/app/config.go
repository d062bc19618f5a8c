package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/cinedash/pkg/httpx"
	"github.com/joho/godotenv"
)

// Client storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Session failure policies.
const (
	PolicyStrict  = "strict"
	PolicyLenient = "lenient"
)

// Durations accept Go syntax ("90s", "1h"). Bare integers are seconds, the
// same unit RATELIMIT_<NAME>_WINDOW uses.
type Config struct {
	CatalogBaseURL string        // Catalog API base URL (default: http://localhost:8000)
	CatalogTimeout time.Duration // Per request timeout for catalog calls (default: 10s)
	SessionPolicy  string        // What a failed catalog call does to the session (strict, lenient) (default: strict)

	StorageDriver string        // Client storage driver (memory, sqlite, redis) (default: memory)
	StorageTTL    time.Duration // Idle lifetime of client storage entries (default: 30 days)
	DatabaseFile  string        // SQLite database file, sqlite driver only (default: ./cinedash.db)
	RedisAddr     string        // Redis address, redis driver only (default: localhost:6379)
	RedisPassword string        // Optional
	RedisDB       int           // Redis logical database (default: 0)

	MasterKey string // Secret the token sealing key is derived from. Required outside dev

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	TrustedProxies       string        // IPs or CIDRs allowed to set X-Forwarded-For, comma separated (default: none)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads the configuration from the environment. In dev a .env
// file in the working directory is loaded first; variables already set win.
func LoadConfig() Config {
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	return Config{
		CatalogBaseURL: getEnvOrDefault("CATALOG_API_BASE_URL", "http://localhost:8000"),
		CatalogTimeout: getEnvDurationOrDefault("CATALOG_API_TIMEOUT", 10*time.Second),
		SessionPolicy:  strings.ToLower(getEnvOrDefault("SESSION_POLICY", PolicyStrict)),

		StorageDriver: strings.ToLower(getEnvOrDefault("CLIENT_STORAGE_DRIVER", DriverMemory)),
		StorageTTL:    getEnvDurationOrDefault("CLIENT_STORAGE_TTL", 30*24*time.Hour),
		DatabaseFile:  getEnvOrDefault("DATABASE_FILE", "cinedash.db"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		MasterKey: os.Getenv("CINEDASH_MASTER_KEY"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		TrustedProxies:       os.Getenv("TRUSTED_PROXIES"),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// IsDev reports whether the service runs in the dev environment.
func (c Config) IsDev() bool { return c.Env == "dev" }

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory, DriverSQLite, DriverRedis:
	default:
		return fmt.Errorf("unknown CLIENT_STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.SessionPolicy {
	case PolicyStrict, PolicyLenient:
	default:
		return fmt.Errorf("unknown SESSION_POLICY %q", c.SessionPolicy)
	}

	if c.CatalogBaseURL == "" {
		return fmt.Errorf("CATALOG_API_BASE_URL must not be empty")
	}

	if _, err := httpx.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	if c.MasterKey == "" && !c.IsDev() {
		return fmt.Errorf("CINEDASH_MASTER_KEY is required when ENV=%s", c.Env)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
