package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Import   ImportConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// ImportConfig holds import pipeline settings.
type ImportConfig struct {
	DefaultSupplier string  `mapstructure:"default_supplier"`
	FuzzyThreshold  float64 `mapstructure:"fuzzy_threshold"`
}

// Load reads configuration from file and env. Env var overrides use prefix PRICESYNC_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "pricesync", "pricesync.db"))
	v.SetDefault("import.default_supplier", "")
	v.SetDefault("import.fuzzy_threshold", 0.60)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("PRICESYNC_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "pricesync"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PRICESYNC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
