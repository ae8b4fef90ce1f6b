// Package config loads the service configuration from an optional
// config.yaml plus BACKTESTER_* environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	HTTPPort int `mapstructure:"http_port"`
}

type DataConfig struct {
	// CSVPath is the default input file; the UI can override it per render.
	CSVPath     string `mapstructure:"csv_path"`
	Granularity string `mapstructure:"granularity"`
}

type CacheConfig struct {
	Expiration time.Duration `mapstructure:"expiration"`
	Cleanup    time.Duration `mapstructure:"cleanup"`
}

// ClickHouseConfig enables the alternative bar source. Disabled unless
// Addr is set.
type ClickHouseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Table    string `mapstructure:"table"`
}

type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Data        DataConfig       `mapstructure:"data"`
	Cache       CacheConfig      `mapstructure:"cache"`
	ClickHouse  ClickHouseConfig `mapstructure:"clickhouse"`
}

// Load reads config.yaml from the working directory or ./config when
// present, then applies environment overrides. Missing files are fine;
// the defaults describe a working local setup.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("config")

	v.SetDefault("environment", "dev")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("data.csv_path", "data/omxs_sample.csv")
	v.SetDefault("data.granularity", "daily")
	v.SetDefault("cache.expiration", 15*time.Minute)
	v.SetDefault("cache.cleanup", 30*time.Minute)
	v.SetDefault("clickhouse.enabled", false)
	v.SetDefault("clickhouse.database", "backtest")
	v.SetDefault("clickhouse.table", "data")

	v.SetEnvPrefix("BACKTESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
