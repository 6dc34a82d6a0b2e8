// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config holds every setting read from the environment
type Config struct {
	Storage    string        `env:"COMPANION_STORAGE" envDefault:"sqlite"`
	SQLitePath string        `env:"COMPANION_SQLITE_PATH" envDefault:"companion.db"`
	RedisURL   string        `env:"COMPANION_REDIS_URL" envDefault:"redis://localhost:6379"`
	SessionTTL time.Duration `env:"COMPANION_SESSION_TTL" envDefault:"0s"`

	// CatalogDir adds game definitions on top of the built-in games
	CatalogDir string `env:"COMPANION_CATALOG_DIR"`

	HTTPAddr string `env:"COMPANION_HTTP_ADDR" envDefault:":8080"`

	Log LogConfig
}

// LogConfig controls the log handler and optional file rotation
type LogConfig struct {
	Level  string `env:"COMPANION_LOG_LEVEL" envDefault:"info"`
	Format string `env:"COMPANION_LOG_FORMAT" envDefault:"text"`

	// Dir enables rotating file output when set
	Dir        string `env:"COMPANION_LOG_DIR"`
	MaxSizeMB  int    `env:"COMPANION_LOG_MAX_SIZE_MB" envDefault:"10"`
	MaxBackups int    `env:"COMPANION_LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"COMPANION_LOG_MAX_AGE_DAYS" envDefault:"28"`
	Compress   bool   `env:"COMPANION_LOG_COMPRESS"`
}

// Load reads a .env file when one exists, then parses the environment
func Load(dotenvPaths ...string) (Config, error) {
	if err := LoadDotenvIfPresent(dotenvPaths...); err != nil {
		return Config{}, err
	}
	return Parse()
}

// Parse reads the configuration from the process environment only
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env parsing cannot
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.SessionTTL < 0 {
		return errors.New("session TTL must not be negative")
	}
	return nil
}

// LoadDotenvIfPresent loads each existing file into the environment.
// Variables already set are not overridden.
func LoadDotenvIfPresent(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat dotenv file %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load dotenv file %s: %w", path, err)
		}
	}
	return nil
}
