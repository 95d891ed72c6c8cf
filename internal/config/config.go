// Package config handles configuration loading for fredseries.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/seenimoa/fredseries/internal/infra"
)

// EnvPrefix prefixes every environment override, e.g. FREDSERIES_FRED_TIMEOUT.
const EnvPrefix = "FREDSERIES"

// Config represents the complete application configuration.
type Config struct {
	FRED    FREDConfig    `mapstructure:"fred"    yaml:"fred"`
	Source  SourceConfig  `mapstructure:"source"  yaml:"source"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// FREDConfig holds settings for the FRED graph endpoint.
type FREDConfig struct {
	BaseURL   string        `mapstructure:"base_url"   yaml:"base_url"   validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout"    yaml:"timeout"    validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent" validate:"required"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"` // requests per second, 0 disables
	RateBurst int           `mapstructure:"rate_burst" yaml:"rate_burst" validate:"gte=0"`
}

// SourceConfig selects where series text comes from.
type SourceConfig struct {
	Kind string `mapstructure:"kind" yaml:"kind" validate:"oneof=fred local"`
	Dir  string `mapstructure:"dir"  yaml:"dir"  validate:"required_if=Kind local"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         validate:"gt=0,lte=65535"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns host:port for the listener.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json console"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fredseries/config.yaml (home directory)
//  3. /etc/fredseries/config.yaml (system)
//
// Environment variables override config file values.
// Format: FREDSERIES_<SECTION>_<KEY>, e.g., FREDSERIES_API_PORT
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fredseries"))
	v.AddConfigPath("/etc/fredseries")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// FRED defaults
	v.SetDefault("fred.base_url", "https://fred.stlouisfed.org/graph/fredgraph.csv")
	v.SetDefault("fred.timeout", infra.DefaultTimeout)
	v.SetDefault("fred.user_agent", infra.DefaultUserAgent)
	v.SetDefault("fred.rate_limit", 2.0)
	v.SetDefault("fred.rate_burst", 5)

	// Source defaults
	v.SetDefault("source.kind", "fred")
	v.SetDefault("source.dir", "./data")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
