package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source store settings. Driver selects the SQL dialect: mysql, postgres or sqlite.
type SourceConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Timeout  time.Duration
}

// Cache store settings. Backend is redis or valkey.
type CacheConfig struct {
	Backend  string
	Host     string
	Port     int
	DB       int
	Password string
}

type Config struct {
	Source   SourceConfig
	Cache    CacheConfig
	Workers  int
	LogLevel string
}

const (
	DefaultWorkers = 15
	DefaultTimeout = 10 * time.Minute
)

// LoadDotEnv loads a .env file if present. It reports whether one was found.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	var err error
	cfg := &Config{
		Source: SourceConfig{
			Driver:   strings.ToLower(Get("DB_DRIVER", "mysql")),
			Host:     Get("DB_HOST", "localhost"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		Cache: CacheConfig{
			Backend:  strings.ToLower(Get("CACHE_BACKEND", "redis")),
			Host:     Get("CACHE_HOST", "localhost"),
			Password: os.Getenv("CACHE_PASSWORD"),
		},
		LogLevel: Get("LOG_LEVEL", "info"),
	}

	if cfg.Source.Port, err = getInt("DB_PORT", defaultPort(cfg.Source.Driver)); err != nil {
		return nil, err
	}
	if cfg.Source.Timeout, err = getDuration("DB_TIMEOUT", DefaultTimeout); err != nil {
		return nil, err
	}
	if cfg.Cache.Port, err = getInt("CACHE_PORT", 6379); err != nil {
		return nil, err
	}
	if cfg.Cache.DB, err = getInt("CACHE_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getInt("WORKERS", DefaultWorkers); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Source.Driver {
	case "mysql", "postgres":
		if strings.TrimSpace(c.Source.Name) == "" {
			return fmt.Errorf("config: DB_NAME is required")
		}
		if strings.TrimSpace(c.Source.User) == "" {
			return fmt.Errorf("config: DB_USER is required")
		}
	case "sqlite":
		if strings.TrimSpace(c.Source.Name) == "" {
			return fmt.Errorf("config: DB_NAME (sqlite file path) is required")
		}
	default:
		return fmt.Errorf("config: DB_DRIVER %q: must be mysql, postgres or sqlite", c.Source.Driver)
	}

	switch c.Cache.Backend {
	case "redis", "valkey":
	default:
		return fmt.Errorf("config: CACHE_BACKEND %q: must be redis or valkey", c.Cache.Backend)
	}

	if c.Workers < 1 {
		return fmt.Errorf("config: WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("config: DB_TIMEOUT must be positive, got %s", c.Source.Timeout)
	}
	if c.Cache.DB < 0 {
		return fmt.Errorf("config: CACHE_DB must not be negative, got %d", c.Cache.DB)
	}
	return nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func defaultPort(driver string) int {
	if driver == "postgres" {
		return 5432
	}
	return 3306
}
