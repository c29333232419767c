// config.go - Handles configuration for the project

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret-change-me"

// Config holds all configuration values
type Config struct {
	Env  string // development | production
	Port string // HTTP listen port

	DBDriver string // sqlite | postgres | mysql
	DBDSN    string // SQLite file path or driver DSN

	JWTSecret string        // HS256 signing key
	JWTTTL    time.Duration // Token lifetime

	CORSOrigins []string

	MQTTBroker      string // Empty disables domain events
	MQTTClientID    string
	MQTTTopicPrefix string

	// Default admin seeding
	CreateAdmin   bool
	AdminUsername string
	AdminPassword string

	OtelEnabled     bool
	OtelEndpoint    string
	OtelServiceName string
}

// Load reads a .env file when present, then environment variables with defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Env:             strings.ToLower(getEnv("APP_ENV", "development")),
		Port:            getEnv("PORT", "8080"),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:           getEnv("DB_DSN", "data.db"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		MQTTBroker:      getEnv("MQTT_BROKER", ""),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "course-management-backend"),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "courses"),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		OtelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelServiceName: getEnv("OTEL_SERVICE_NAME", "course-management-backend"),
	}

	var err error
	if cfg.JWTTTL, err = getEnvDuration("JWT_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CreateAdmin, err = getEnvBool("CREATE_ADMIN", false); err != nil {
		return nil, err
	}
	if cfg.OtelEnabled, err = getEnvBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET environment variable is not set; required in production")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.CreateAdmin && cfg.AdminPassword == "" {
		return nil, errors.New("ADMIN_PASSWORD is required when CREATE_ADMIN is enabled")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Port: %s, DB: %s, JWT: *** (masked) ***, TTL: %s, MQTT: %q, Otel: %t}",
		c.Env, c.Port, c.DBDriver, c.JWTTTL, c.MQTTBroker, c.OtelEnabled)
}

func getEnv(key, fallback string) string { // Helper to get env var or fallback
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
