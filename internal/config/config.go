// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/stwalsh4118/asrun/internal/logger"
	"github.com/stwalsh4118/asrun/internal/region"
)

const (
	defaultServerPort                = 8080
	defaultServerHost                = "0.0.0.0"
	defaultReadTimeout               = 30 * time.Second
	defaultWriteTimeout              = 5 * time.Minute
	defaultDatabasePath              = "./data/asrun.db"
	defaultDatabaseConnectionTimeout = 5 * time.Second
	defaultLogLevel                  = "info"
	defaultLogPretty                 = false
	defaultIngestMaxGap              = 30 * time.Minute
	defaultIngestFallbackDuration    = 2 * time.Hour
	defaultIngestWorkers             = 4
	defaultStorageBackend            = StorageBackendLocal
	defaultStorageLocalRoot          = "./data/objects"
	defaultStorageBucket             = "asrun"
	defaultStorageBreakerThreshold   = 5
	defaultStorageBreakerCooldown    = 30 * time.Second
	defaultMetricsEnabled            = true
	envPrefix                        = "ASRUN"
)

// Storage backends
const (
	StorageBackendLocal = "local"
	StorageBackendGCS   = "gcs"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Ingest   IngestConfig
	Storage  StorageConfig
	PubSub   PubSubConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path              string
	ConnectionTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// IngestConfig holds segmentation policy and batch settings
type IngestConfig struct {
	MaxGap           time.Duration
	FallbackDuration time.Duration
	DefaultRegion    string
	// Regions maps region codes to IANA zone names. Empty uses the built-in
	// table and its aliases.
	Regions map[string]string
	// Aliases maps alternate region spellings to a code in Regions
	Aliases   map[string]string
	Workers   int
	Reprocess bool
}

// StorageConfig holds object store configuration
type StorageConfig struct {
	Backend       string
	LocalRoot     string
	DefaultBucket string
	// GCSEndpoint overrides the Cloud Storage endpoint (emulators)
	GCSEndpoint string
	// BreakerThreshold consecutive backend failures stop fetches for BreakerCooldown
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// PubSubConfig holds storage notification subscription configuration
type PubSubConfig struct {
	Enabled        bool
	ProjectID      string
	SubscriptionID string
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/asrun")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	// Database defaults
	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.connectiontimeout", defaultDatabaseConnectionTimeout)

	// Logging defaults
	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	// Ingest defaults
	v.SetDefault("ingest.maxgap", defaultIngestMaxGap)
	v.SetDefault("ingest.fallbackduration", defaultIngestFallbackDuration)
	v.SetDefault("ingest.defaultregion", region.DefaultCode)
	v.SetDefault("ingest.workers", defaultIngestWorkers)
	v.SetDefault("ingest.reprocess", false)

	// Storage defaults
	v.SetDefault("storage.backend", defaultStorageBackend)
	v.SetDefault("storage.localroot", defaultStorageLocalRoot)
	v.SetDefault("storage.defaultbucket", defaultStorageBucket)
	v.SetDefault("storage.gcsendpoint", "")
	v.SetDefault("storage.breakerthreshold", defaultStorageBreakerThreshold)
	v.SetDefault("storage.breakercooldown", defaultStorageBreakerCooldown)

	// Pub/Sub defaults
	v.SetDefault("pubsub.enabled", false)
	v.SetDefault("pubsub.projectid", "")
	v.SetDefault("pubsub.subscriptionid", "")

	// Metrics defaults
	v.SetDefault("metrics.enabled", defaultMetricsEnabled)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}
	if c.Database.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid database connection timeout: %v (must be > 0)", c.Database.ConnectionTimeout)
	}

	if !logger.IsValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(logger.Levels(), ", "))
	}

	if c.Ingest.MaxGap <= 0 {
		return fmt.Errorf("invalid ingest max gap: %v (must be > 0)", c.Ingest.MaxGap)
	}
	if c.Ingest.FallbackDuration <= 0 {
		return fmt.Errorf("invalid ingest fallback duration: %v (must be > 0)", c.Ingest.FallbackDuration)
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("invalid ingest workers: %d (must be >= 1)", c.Ingest.Workers)
	}
	if _, err := c.Resolver(); err != nil {
		return fmt.Errorf("invalid region table: %w", err)
	}

	switch c.Storage.Backend {
	case StorageBackendLocal:
		if c.Storage.LocalRoot == "" {
			return fmt.Errorf("storage.localroot is required for the %s backend", StorageBackendLocal)
		}
	case StorageBackendGCS:
	default:
		return fmt.Errorf("invalid storage backend: %s (must be one of: %s, %s)", c.Storage.Backend, StorageBackendLocal, StorageBackendGCS)
	}

	if c.Storage.BreakerThreshold < 1 {
		return fmt.Errorf("invalid storage breaker threshold: %d (must be >= 1)", c.Storage.BreakerThreshold)
	}
	if c.Storage.BreakerCooldown <= 0 {
		return fmt.Errorf("invalid storage breaker cooldown: %v (must be > 0)", c.Storage.BreakerCooldown)
	}

	if c.PubSub.Enabled {
		if c.Storage.Backend != StorageBackendGCS {
			return fmt.Errorf("pubsub requires the %s storage backend", StorageBackendGCS)
		}
		if c.PubSub.ProjectID == "" || c.PubSub.SubscriptionID == "" {
			return errors.New("pubsub.projectid and pubsub.subscriptionid are required when pubsub is enabled")
		}
	}

	return nil
}

// Resolver builds the region resolver described by the ingest section
func (c *Config) Resolver() (*region.Resolver, error) {
	table, aliases := c.Ingest.Regions, c.Ingest.Aliases
	if len(table) == 0 {
		table = region.DefaultTable()
		if len(aliases) == 0 {
			aliases = region.DefaultAliases()
		}
	}
	return region.NewResolver(table, c.Ingest.DefaultRegion, aliases)
}
