// Package config загружает настройки сервиса котировок: значения по умолчанию,
// затем YAML-файл (если задан), затем переменные окружения QUOTEBOT_*.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "QUOTEBOT"

// Config — корневая структура настроек.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Venue  VenueConfig  `mapstructure:"venue"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Retry  RetryConfig  `mapstructure:"retry"`
	Warm   WarmConfig   `mapstructure:"warm"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	// Env: development | production (влияет на формат логов).
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// VenueConfig — биржа, с которой берутся листинг и стаканы.
type VenueConfig struct {
	// Name: coinbase | binance | kucoin.
	Name    string        `mapstructure:"name"`
	BaseURL string        `mapstructure:"base_url"`
	Depth   int           `mapstructure:"depth"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	ProductsTTL time.Duration `mapstructure:"products_ttl"`
	BookTTL     time.Duration `mapstructure:"book_ttl"`
}

type RetryConfig struct {
	Attempts int           `mapstructure:"attempts"`
	MinDelay time.Duration `mapstructure:"min_delay"`
	MaxDelay time.Duration `mapstructure:"max_delay"`
}

// WarmConfig — продукты, стаканы которых грузятся при старте.
type WarmConfig struct {
	Products    []string `mapstructure:"products"`
	Concurrency int      `mapstructure:"concurrency"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "quotebot")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)

	v.SetDefault("venue.name", "coinbase")
	v.SetDefault("venue.base_url", "")
	v.SetDefault("venue.depth", 100)
	v.SetDefault("venue.timeout", 7*time.Second)

	v.SetDefault("cache.products_ttl", 5*time.Second)
	v.SetDefault("cache.book_ttl", 30*time.Second)

	v.SetDefault("retry.attempts", 2)
	v.SetDefault("retry.min_delay", 400*time.Millisecond)
	v.SetDefault("retry.max_delay", 2*time.Second)

	v.SetDefault("warm.products", []string{})
	v.SetDefault("warm.concurrency", 4)
}

// Load читает конфигурацию. Пустой path — только умолчания и окружение.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// старое имя переменной из первой версии сервиса
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	cfg.Venue.Name = strings.ToLower(strings.TrimSpace(cfg.Venue.Name))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	switch c.Venue.Name {
	case "coinbase", "binance", "kucoin":
	default:
		return fmt.Errorf("venue.name %q is not supported (coinbase, binance, kucoin)", c.Venue.Name)
	}
	if c.Cache.ProductsTTL < 0 || c.Cache.BookTTL < 0 {
		return errors.New("cache TTLs must not be negative")
	}
	if c.Retry.Attempts < 1 {
		return errors.New("retry.attempts must be >= 1")
	}
	if c.Retry.MaxDelay < c.Retry.MinDelay {
		return errors.New("retry.max_delay must be >= retry.min_delay")
	}
	switch strings.ToLower(c.App.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("app.log_level %q is not supported", c.App.LogLevel)
	}
	return nil
}
