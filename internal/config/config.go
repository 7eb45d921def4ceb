package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_PORT"` specify the environment variable name.
// `default:""` provides a default value if the env var is not set.
// `required:"true"` makes an environment variable mandatory.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // e.g., debug, info, warn, error
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Postgres   PostgresConfig
	Catalog    CatalogConfig
	Quote      QuoteConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// PostgresConfig holds PostgreSQL database connection details.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBName   string `envconfig:"POSTGRES_DBNAME" required:"true"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

// CatalogConfig controls which catalog snapshot is indexed and how lookups are cached.
type CatalogConfig struct {
	Suppliers        []string `envconfig:"CATALOG_SUPPLIERS"`                         // Comma separated; empty loads all suppliers
	ResolveCacheSize int      `envconfig:"CATALOG_RESOLVE_CACHE_SIZE" default:"4096"` // 0 disables the resolver memo
}

// QuoteConfig holds quoting settings.
type QuoteConfig struct {
	ThresholdsFile string `envconfig:"THRESHOLDS_FILE"` // Optional YAML overriding the sanity thresholds
	Currency       string `envconfig:"QUOTE_CURRENCY" default:"NZD"`
}

var cfg Config

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	log.Println("Loading service configuration...")
	cfg = Config{}
	err := envconfig.Process("", &cfg) // The first argument is a prefix for env vars, empty means no prefix
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if cfg.Catalog.ResolveCacheSize < 0 {
		return nil, fmt.Errorf("invalid CATALOG_RESOLVE_CACHE_SIZE: %d", cfg.Catalog.ResolveCacheSize)
	}
	cfg.Quote.Currency = strings.ToUpper(strings.TrimSpace(cfg.Quote.Currency))

	log.Printf("Configuration loaded successfully for APP_ENV: %s", cfg.AppEnv)
	// For security, avoid logging sensitive parts of the config like passwords or full DSNs in production.
	return &cfg, nil
}
