package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config holds all configuration for the registry service
type Config struct {
	// Server settings
	Server ServerConfig `envconfig:"SERVER"`

	// Storage settings
	Storage StorageConfig `envconfig:"STORAGE"`

	// Seed host discovery settings
	Discovery DiscoveryConfig `envconfig:"DISCOVERY"`

	// Logging settings
	Logging LoggingConfig `envconfig:"LOGGING"`
}

// ServerConfig contains server-specific configuration
type ServerConfig struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// StorageConfig selects and configures the cluster store
type StorageConfig struct {
	Type      string `envconfig:"TYPE" default:"memory"` // 'memory' or 'redis'
	RedisURI  string `envconfig:"REDIS_URI" default:"redis://localhost:6379/0"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"registry:"`
}

// DiscoveryConfig contains Kubernetes seed host discovery configuration
type DiscoveryConfig struct {
	Enabled    bool          `envconfig:"ENABLED" default:"false"`
	Namespace  string        `envconfig:"NAMESPACE" default:"default"`
	Kubeconfig string        `envconfig:"KUBECONFIG" default:""` // Empty means in-cluster config
	Interval   time.Duration `envconfig:"INTERVAL" default:"1m"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Development bool   `envconfig:"DEV" default:"false"` // Whether to use development logger (more verbose)
	Level       string `envconfig:"LEVEL" default:""`     // debug, info, warn or error; empty picks the mode's default
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	var cfg Config

	// Process environment variables with "REGISTRY" prefix
	if err := envconfig.Process("REGISTRY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.Discovery.Enabled && c.Discovery.Interval <= 0 {
		return fmt.Errorf("discovery interval must be positive, got %s", c.Discovery.Interval)
	}
	return nil
}

// Module provides the config dependency to the fx container
var Module = fx.Options(
	fx.Provide(LoadConfig),
)
