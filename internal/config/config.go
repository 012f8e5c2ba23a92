// Package config reads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/logger"
)

const devJWTSecret = "fallback-secret-key-for-dev-only"

// Config holds application configuration
type Config struct {
	// Server
	Port               string
	Env                string
	CORSAllowedOrigins []string

	// Database
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBSlowQuery       time.Duration
	MigrationsPath    string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Pipeline
	PipelineAPIKey string

	// Events
	AMQPURL      string
	AMQPExchange string

	// Reconciliation
	AnnualLegacyMatching bool
}

// Load reads the configuration. Malformed numeric, duration and boolean values
// fall back to their defaults with a warning. Production refuses to start on
// the development JWT secret.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Get().Debug("no .env file loaded")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "fintrack"),
		DBPassword:        getEnv("DB_PASSWORD", "fintrack"),
		DBName:            getEnv("DB_NAME", "fintrack"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 50),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		DBSlowQuery:       getDuration("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "migrations"),

		JWTSecret:        getEnv("JWT_SECRET", devJWTSecret),
		JWTExpirationDur: getDuration("JWT_EXPIRES_IN", 24*time.Hour),

		PipelineAPIKey: os.Getenv("PIPELINE_API_KEY"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack.budgets"),

		AnnualLegacyMatching: getBool("ANNUAL_LEGACY_MATCHING", true),
	}

	if cfg.IsProduction() && cfg.JWTSecret == devJWTSecret {
		return nil, errors.New("JWT_SECRET must be set in production")
	}
	return cfg, nil
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// EventsEnabled reports whether an AMQP broker is configured.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parsed reads key with parse, warning and returning def when the value is malformed.
func parsed[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		logger.Get().Warnw("invalid configuration value, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}

func getInt(key string, def int) int { return parsed(key, def, strconv.Atoi) }

func getBool(key string, def bool) bool { return parsed(key, def, strconv.ParseBool) }

func getDuration(key string, def time.Duration) time.Duration {
	return parsed(key, def, time.ParseDuration)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
