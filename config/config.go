// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Games  GamesConfig  `mapstructure:"games"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	GinMode        string   `mapstructure:"gin_mode"`
}

// StoreConfig selects and configures the snapshot backend. Backend is one
// of "memory", "redis" or "postgres".
type StoreConfig struct {
	Backend     string `mapstructure:"backend"`
	RedisAddr   string `mapstructure:"redis_addr"`
	PostgresURL string `mapstructure:"postgres_url"`
}

// GamesConfig holds game-engine configuration.
type GamesConfig struct {
	// Seed makes every engine's random source deterministic; zero
	// seeds from the clock.
	Seed int64 `mapstructure:"seed"`
	// DebugDrops sends a diagnostic frame for every silently-dropped
	// message. Never enable in production.
	DebugDrops bool `mapstructure:"debug_drops"`
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. SERVER_ADDR, STORE_BACKEND, STORE_REDIS_ADDR.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.gin_mode", "debug")

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.redis_addr", "localhost:6379")
	// Registered so the STORE_POSTGRES_URL env var binds even with no
	// config file present.
	v.SetDefault("store.postgres_url", "")

	v.SetDefault("games.seed", 0)
	v.SetDefault("games.debug_drops", false)
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "memory", "redis":
	case "postgres":
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("store.postgres_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}
