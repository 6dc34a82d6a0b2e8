package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/tabletop-companion/internal/config"
	"github.com/mcoot/tabletop-companion/internal/dependencies/clock"
	"github.com/mcoot/tabletop-companion/internal/dependencies/random"
	"github.com/mcoot/tabletop-companion/internal/services/catalog"
	"github.com/mcoot/tabletop-companion/internal/services/profile"
	"github.com/mcoot/tabletop-companion/internal/services/session"
	"github.com/mcoot/tabletop-companion/internal/storage"
	"github.com/mcoot/tabletop-companion/internal/storage/memory"
	redisstorage "github.com/mcoot/tabletop-companion/internal/storage/redis"
	"github.com/mcoot/tabletop-companion/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Catalog  *catalog.Service
	Sessions *session.Repository
	Profiles *profile.Service
	Engine   *session.Engine
}

// Config holds configuration for the application factory
type Config struct {
	// CatalogDir adds game definitions on top of the built-in games (optional)
	CatalogDir string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
}

// ConfigFrom builds a factory Config from the environment settings
func ConfigFrom(cfg config.Config, logger *slog.Logger) Config {
	fc := Config{
		CatalogDir:  cfg.CatalogDir,
		Logger:      logger,
		StorageType: cfg.Storage,
		SQLitePath:  cfg.SQLitePath,
	}
	if cfg.Storage == StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		if cfg.RedisURL != "" {
			redisCfg.URL = cfg.RedisURL
		}
		if cfg.SessionTTL > 0 {
			redisCfg.SessionTTL = cfg.SessionTTL
		}
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// New creates a new application with all dependencies wired. The current
// session is restored from the active pointer.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	games, err := catalog.Load(logger, cfg.CatalogDir)
	if err != nil {
		return nil, err
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(store, games, clock.New(), random.New(), logger)
	if err := app.Engine.Restore(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("restore current session: %w", err)
	}
	return app, nil
}

func openStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(ctx, cfg.SQLitePath)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, games *catalog.Service, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	sessions := session.NewRepository(store, clk, logger)
	profiles := profile.NewService(store, clk, rnd, logger)
	engine := session.NewEngine(sessions, games, profiles, clk, rnd, logger)

	return &App{
		Storage:  store,
		Clock:    clk,
		Random:   rnd,
		Catalog:  games,
		Sessions: sessions,
		Profiles: profiles,
		Engine:   engine,
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
