package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
	Server     ServerConfig     `yaml:"server"`
	Search     SearchConfig     `yaml:"search"`
	Store      StoreConfig      `yaml:"store"`
	Cache      CacheConfig      `yaml:"cache"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string `yaml:"dsn"` // full connection string, takes precedence
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Database           string `yaml:"database"`
	SSLMode            string `yaml:"sslmode"`
	MaxConnections     int    `yaml:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections"`
	AutoMigrate        bool   `yaml:"auto_migrate"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int    `yaml:"port"`
	Host            string `yaml:"host"`
	GinMode         string `yaml:"gin_mode"`
	AllowedOrigins  string `yaml:"allowed_origins"`
	AllowedMethods  string `yaml:"allowed_methods"`
	AllowedHeaders  string `yaml:"allowed_headers"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // seconds
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	ResultLimit int  `yaml:"result_limit"`
	LogSearches bool `yaml:"log_searches"`
}

// StoreConfig selects the document store backend
type StoreConfig struct {
	Driver   string `yaml:"driver"`
	SeedFile string `yaml:"seed_file"` // JSON or NDJSON catalog loaded by the memory driver
}

// CacheConfig holds Redis configuration. Caching is disabled when Addr is empty.
type CacheConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	Prefix     string `yaml:"prefix"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// EmbeddingConfig holds embedding upload constraints
type EmbeddingConfig struct {
	Dimensions int `yaml:"dimensions"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Enabled reports whether a Redis cache is configured
func (c CacheConfig) Enabled() bool {
	return c.Addr != ""
}

// Load reads configuration from an optional YAML file named by CONFIG_FILE,
// then lets environment variables override it.
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		PostgreSQL: PostgreSQLConfig{
			Host:               "localhost",
			Port:               5432,
			User:               "postgres",
			Database:           "grocery",
			SSLMode:            "disable",
			MaxConnections:     25,
			MaxIdleConnections: 5,
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			GinMode:         "release",
			AllowedOrigins:  "*",
			AllowedMethods:  "GET,POST,OPTIONS",
			AllowedHeaders:  "Content-Type,Authorization,X-Request-ID",
			ShutdownTimeout: 10,
		},
		Search: SearchConfig{
			ResultLimit: 50,
		},
		Store: StoreConfig{
			Driver: DriverPostgres,
		},
		Cache: CacheConfig{
			Prefix:     "grocery:",
			TTLSeconds: 60,
		},
		Embedding: EmbeddingConfig{
			Dimensions: 1536,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	// DATABASE_URL, POSTGRESQL_URI and PG_DSN are accepted, in that order
	c.PostgreSQL.DSN = getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", c.PostgreSQL.DSN)))
	c.PostgreSQL.Host = getEnv("PG_HOST", c.PostgreSQL.Host)
	c.PostgreSQL.Port = getEnvAsInt("PG_PORT", c.PostgreSQL.Port)
	c.PostgreSQL.User = getEnv("PG_USER", c.PostgreSQL.User)
	c.PostgreSQL.Password = getEnv("PG_PASSWORD", c.PostgreSQL.Password)
	c.PostgreSQL.Database = getEnv("PG_DATABASE", c.PostgreSQL.Database)
	c.PostgreSQL.SSLMode = getEnv("PG_SSLMODE", c.PostgreSQL.SSLMode)
	c.PostgreSQL.MaxConnections = getEnvAsInt("PG_MAX_CONNECTIONS", c.PostgreSQL.MaxConnections)
	c.PostgreSQL.MaxIdleConnections = getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", c.PostgreSQL.MaxIdleConnections)
	c.PostgreSQL.AutoMigrate = getEnvAsBool("PG_AUTO_MIGRATE", c.PostgreSQL.AutoMigrate)

	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.GinMode = getEnv("GIN_MODE", c.Server.GinMode)
	c.Server.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.AllowedMethods = getEnv("CORS_ALLOWED_METHODS", c.Server.AllowedMethods)
	c.Server.AllowedHeaders = getEnv("CORS_ALLOWED_HEADERS", c.Server.AllowedHeaders)
	c.Server.ShutdownTimeout = getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Search.ResultLimit = getEnvAsInt("SEARCH_RESULT_LIMIT", c.Search.ResultLimit)
	c.Search.LogSearches = getEnvAsBool("SEARCH_LOG_ENABLED", c.Search.LogSearches)

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	c.Store.SeedFile = getEnv("STORE_SEED_FILE", c.Store.SeedFile)

	c.Cache.Addr = getEnv("REDIS_ADDR", c.Cache.Addr)
	c.Cache.Password = getEnv("REDIS_PASSWORD", c.Cache.Password)
	c.Cache.DB = getEnvAsInt("REDIS_DB", c.Cache.DB)
	c.Cache.Prefix = getEnv("REDIS_PREFIX", c.Cache.Prefix)
	c.Cache.TTLSeconds = getEnvAsInt("REDIS_TTL_SECONDS", c.Cache.TTLSeconds)

	c.Embedding.Dimensions = getEnvAsInt("EMBEDDING_DIMENSIONS", c.Embedding.Dimensions)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
}

// ApplyDefaults fills zero values left by a partial config file
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.PostgreSQL.MaxConnections <= 0 {
		c.PostgreSQL.MaxConnections = d.PostgreSQL.MaxConnections
	}
	if c.PostgreSQL.MaxIdleConnections <= 0 {
		c.PostgreSQL.MaxIdleConnections = d.PostgreSQL.MaxIdleConnections
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Search.ResultLimit == 0 {
		c.Search.ResultLimit = d.Search.ResultLimit
	}
	if c.Store.Driver == "" {
		c.Store.Driver = d.Store.Driver
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = d.Cache.TTLSeconds
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = d.Embedding.Dimensions
	}
	c.Store.Driver = strings.ToLower(c.Store.Driver)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	switch c.Store.Driver {
	case DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("store.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Store.Driver))
	}
	if c.Search.ResultLimit <= 0 {
		errs = append(errs, fmt.Errorf("search.result_limit must be positive, got %d", c.Search.ResultLimit))
	}
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
