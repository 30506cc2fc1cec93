package config

import (
	"fmt"
	"time"

	"github.com/gridcast/gridcast/internal/utils"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Source   SourceConfig   `mapstructure:"source"`
	Events   EventsConfig   `mapstructure:"events"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// StoreConfig represents series-store configuration
type StoreConfig struct {
	Type string `mapstructure:"type"` // postgres (default) or memory
	DSN  string `mapstructure:"dsn"`  // Postgres connection string
}

// SourceConfig represents the external data-source configuration
type SourceConfig struct {
	BaseURL string        `mapstructure:"base_url"` // EIA v2 retail-sales endpoint
	APIKey  string        `mapstructure:"api_key"`  // EIA API key
	Sector  string        `mapstructure:"sector"`   // Sector facet (default: RES, residential)
	Timeout time.Duration `mapstructure:"timeout"`  // Per-request timeout
}

// EventsConfig represents run-event publisher configuration
type EventsConfig struct {
	Type     string `mapstructure:"type"`     // nats, redis, kafka, memory, none (default)
	URL      string `mapstructure:"url"`      // Broker URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB     int    `mapstructure:"redis_db"`     // Redis database number (default: 0)
	RedisStream string `mapstructure:"redis_stream"` // Redis stream prefix (default: "gridcast")

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"` // Kafka broker addresses
}

// PipelineConfig represents forecasting-pipeline configuration
type PipelineConfig struct {
	GapTolerance int           `mapstructure:"gap_tolerance"` // Max consecutive missing months filled by interpolation
	Windows      []int         `mapstructure:"windows"`       // Trailing evaluation windows in months
	StepTimeout  time.Duration `mapstructure:"step_timeout"`  // Timeout per external I/O step
	MaxRetries   int           `mapstructure:"max_retries"`   // Retry attempts for transient I/O failures
	RetryBackoff time.Duration `mapstructure:"retry_backoff"` // Initial retry backoff (grows exponentially)
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events config: %w", err)
	}

	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	return nil
}

// Validate validates store configuration
func (c *StoreConfig) Validate() error {
	switch utils.StoreType(c.Type) {
	case utils.StoreTypePostgres:
		if c.DSN == "" {
			return fmt.Errorf("store.dsn is required for postgres store")
		}
	case utils.StoreTypeMemory:
	default:
		return fmt.Errorf("store.type must be 'postgres' or 'memory'")
	}
	return nil
}

// Validate validates events configuration
func (c *EventsConfig) Validate() error {
	switch utils.EventsType(c.Type) {
	case utils.EventsTypeNone, utils.EventsTypeMemory:
	case utils.EventsTypeNATS, utils.EventsTypeRedis:
		if c.URL == "" {
			return fmt.Errorf("events.url is required for %s events", c.Type)
		}
	case utils.EventsTypeKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("events.kafka_brokers is required for kafka events")
		}
	default:
		return fmt.Errorf("events.type must be one of: nats, redis, kafka, memory, none")
	}
	return nil
}

// Validate validates pipeline configuration
func (c *PipelineConfig) Validate() error {
	if c.GapTolerance < 0 {
		return fmt.Errorf("pipeline.gap_tolerance cannot be negative")
	}

	if len(c.Windows) == 0 {
		return fmt.Errorf("pipeline.windows is required")
	}
	for _, w := range c.Windows {
		if w < 1 {
			return fmt.Errorf("pipeline.windows entries must be positive, got %d", w)
		}
	}

	if c.StepTimeout <= 0 {
		return fmt.Errorf("pipeline.step_timeout must be positive")
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("pipeline.max_retries cannot be negative")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
