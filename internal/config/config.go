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

// EnvPrefix prefixes every environment override, e.g. CHAIN_REGISTRY_SERVER_PORT.
const EnvPrefix = "CHAIN_REGISTRY"

// Config holds all configuration for the application.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Checker   CheckerConfig   `mapstructure:"checker"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Chainlist ChainlistConfig `mapstructure:"chainlist"`
	Bridge    BridgeConfig    `mapstructure:"bridge"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// CheckerConfig holds settings related to the RPC checking process.
type CheckerConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	CheckTimeout  time.Duration `mapstructure:"check_timeout"`
	MaxWorkers    int           `mapstructure:"max_workers"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	RunOnStartup  bool          `mapstructure:"run_on_startup"`
	// Schedule is a cron spec; when empty the sweep runs every CheckInterval.
	Schedule string `mapstructure:"schedule"`
}

// CacheConfig holds settings for the caching layer.
type CacheConfig struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// CatalogConfig selects the chain catalog. With an empty Path the built-in
// table is used. With Extend the file is overlaid on the built-in table,
// otherwise it replaces it.
type CatalogConfig struct {
	Path   string `mapstructure:"path"`
	Extend bool   `mapstructure:"extend"`
}

// ChainlistConfig holds configuration for the Chainlist data source.
type ChainlistConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// BridgeConfig holds settings of the game-runtime bridge.
type BridgeConfig struct {
	NodeBaseURL  string `mapstructure:"node_base_url"`
	RelayEnabled bool   `mapstructure:"relay_enabled"`
	DefaultEnv   string `mapstructure:"default_env"`
}

// Load reads configuration from file and environment variables. A .env file
// in the working directory is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("app.name", "chain-registry")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("checker.check_interval", "15m")
	v.SetDefault("checker.check_timeout", "5s")
	v.SetDefault("checker.max_workers", 20)
	v.SetDefault("checker.cache_ttl", "30m")
	v.SetDefault("checker.run_on_startup", false)
	v.SetDefault("checker.schedule", "")
	v.SetDefault("cache.default_expiration", "30m")
	v.SetDefault("cache.cleanup_interval", "1h")
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.extend", true)
	v.SetDefault("chainlist.enabled", false)
	v.SetDefault("chainlist.url", "https://chainid.network/chains.json")
	v.SetDefault("chainlist.timeout", "15s")
	v.SetDefault("bridge.node_base_url", "https://rpc.particle.network")
	v.SetDefault("bridge.relay_enabled", false)
	v.SetDefault("bridge.default_env", "production")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (c CheckerConfig) GetTimeout() time.Duration {
	return c.CheckTimeout
}

func (c CheckerConfig) GetCheckInterval() time.Duration {
	return c.CheckInterval
}

func (c CheckerConfig) GetCacheTTL() time.Duration {
	return c.CacheTTL
}

// GetSchedule returns the cron spec of the background sweep, or "" when disabled.
func (c CheckerConfig) GetSchedule() string {
	if c.Schedule != "" {
		return c.Schedule
	}
	if c.CheckInterval <= 0 {
		return ""
	}
	return "@every " + c.CheckInterval.String()
}

func (c CacheConfig) GetDefaultExpiration() time.Duration {
	return c.DefaultExpiration
}

func (c CacheConfig) GetCleanupInterval() time.Duration {
	return c.CleanupInterval
}
