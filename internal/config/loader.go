package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/gridcast/gridcast/internal/utils"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")             // Current directory
		v.AddConfigPath("./configs")     // Project configs directory
		v.AddConfigPath("/etc/gridcast") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix("GRIDCAST")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 6060)

	// Store defaults
	v.SetDefault("store.type", string(utils.StoreTypePostgres))

	// Source defaults
	v.SetDefault("source.base_url", "https://api.eia.gov/v2/electricity/retail-sales/data/")
	v.SetDefault("source.sector", "RES")
	v.SetDefault("source.timeout", utils.DefaultRequestTimeout)

	// Events defaults
	v.SetDefault("events.type", string(utils.EventsTypeNone))
	v.SetDefault("events.redis_stream", "gridcast")

	// Pipeline defaults
	v.SetDefault("pipeline.gap_tolerance", 1)
	v.SetDefault("pipeline.windows", []int{1, 3, 6, 12})
	v.SetDefault("pipeline.step_timeout", utils.DefaultStepTimeout)
	v.SetDefault("pipeline.max_retries", utils.DefaultMaxRetries)
	v.SetDefault("pipeline.retry_backoff", utils.DefaultRetryBackoff)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: 6060,
		},
		Store: StoreConfig{
			Type: string(utils.StoreTypeMemory),
		},
		Source: SourceConfig{
			BaseURL: "https://api.eia.gov/v2/electricity/retail-sales/data/",
			Sector:  "RES",
			Timeout: utils.DefaultRequestTimeout,
		},
		Events: EventsConfig{
			Type: string(utils.EventsTypeNone),
		},
		Pipeline: PipelineConfig{
			GapTolerance: 1,
			Windows:      []int{1, 3, 6, 12},
			StepTimeout:  utils.DefaultStepTimeout,
			MaxRetries:   utils.DefaultMaxRetries,
			RetryBackoff: utils.DefaultRetryBackoff,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
