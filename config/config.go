package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Corpus sources
const (
	CorpusSourceSQLite = "sqlite"
	CorpusSourceMongo  = "mongo"
	CorpusSourceRemote = "remote"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Storage       StorageConfig
	Corpus        CorpusConfig
	Mongo         MongoConfig
	Remote        RemoteConfig
	Auth          AuthConfig
	RateLimit     RateLimitConfig
	Matching      MatchingConfig
	Notifications NotificationsConfig
	WLID          WLIDConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig holds the local SQLite system of record
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// CorpusConfig selects where historical requests are read from
type CorpusConfig struct {
	Source   string        `mapstructure:"source"` // "sqlite", "mongo" or "remote"
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// MongoConfig holds the document database corpus settings
type MongoConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// RemoteConfig holds the hosted corpus API settings
type RemoteConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	APIKey            string  `mapstructure:"api_key"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// RateLimitConfig holds per-client API throttling
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// MatchingConfig holds similarity matching options
type MatchingConfig struct {
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// NotificationsConfig holds inbox retention
type NotificationsConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// WLIDConfig holds product code formatting
type WLIDConfig struct {
	Width    int               `mapstructure:"width"`
	Prefixes map[string]string `mapstructure:"prefixes"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/quoteflow/")

	// QUOTEFLOW_SERVER_PORT overrides server.port
	v.SetEnvPrefix("QUOTEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// setDefaults sets default configuration values. Every key needs a default
// so that AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("storage.path", "data/quoteflow.db")

	v.SetDefault("corpus.source", CorpusSourceSQLite)
	v.SetDefault("corpus.cache_ttl", "5m")

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "quoteflow")
	v.SetDefault("mongo.collection", "requests")
	v.SetDefault("mongo.timeout", "10s")

	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.api_key", "")
	v.SetDefault("remote.requests_per_second", 2)
	v.SetDefault("remote.burst", 5)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "quoteflow")

	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("matching.enable_debug_logging", false)

	v.SetDefault("notifications.ttl", "720h") // 30 days

	v.SetDefault("wlid.width", 4)
	v.SetDefault("wlid.prefixes", map[string]string{})
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set QUOTEFLOW_AUTH_JWT_SECRET)")
	}

	switch config.Corpus.Source {
	case CorpusSourceSQLite:
	case CorpusSourceMongo:
		if config.Mongo.URI == "" {
			return fmt.Errorf("Mongo URI is required when corpus source is 'mongo'")
		}
	case CorpusSourceRemote:
		if config.Remote.BaseURL == "" {
			return fmt.Errorf("remote base URL is required when corpus source is 'remote'")
		}
	default:
		return fmt.Errorf("corpus source must be 'sqlite', 'mongo' or 'remote', got: %s", config.Corpus.Source)
	}

	if config.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if config.WLID.Width < 1 || config.WLID.Width > 12 {
		return fmt.Errorf("wlid width must be between 1 and 12, got: %d", config.WLID.Width)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
