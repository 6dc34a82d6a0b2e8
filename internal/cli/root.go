package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/tabletop-companion/internal/factory"
	"github.com/mcoot/tabletop-companion/internal/logging"
)

// AppOpener builds the application for a command run
type AppOpener func(ctx context.Context, cfg *Config, logger *slog.Logger) (*factory.App, error)

var (
	cfg    *Config
	app    *factory.App
	logger *slog.Logger
)

// NewRootCmd creates the root command over the configured storage
func NewRootCmd() *cobra.Command {
	return newRootCmd(openApp)
}

func newRootCmd(open AppOpener) *cobra.Command {
	var loadErr error
	cfg, loadErr = DefaultConfig()

	var logCloser io.Closer

	rootCmd := &cobra.Command{
		Use:   "companion",
		Short: "Board game companion",
		Long: `companion tracks board game sessions: scores, resources, turns and
phases, plus reusable player profiles with lifetime stats.

The session being played survives restarts; every command picks up where
the last one left off.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if loadErr != nil {
				return loadErr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var err error
			logger, logCloser, err = logging.NewWithFile(cfg.logConfig(), "companion.log")
			if err != nil {
				return err
			}

			app = nil
			if cmd.Annotations[annotationRemote] == "true" {
				return nil
			}
			app, err = open(cmd.Context(), cfg, logger)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app != nil {
				if err := app.Close(); err != nil {
					return err
				}
			}
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage backend: memory, redis, sqlite (env: COMPANION_STORAGE)")
	flags.StringVar(&cfg.SQLitePath, "db", cfg.SQLitePath, "SQLite database file (env: COMPANION_SQLITE_PATH)")
	flags.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL (env: COMPANION_REDIS_URL)")
	flags.StringVar(&cfg.CatalogDir, "catalog-dir", cfg.CatalogDir, "Extra game definitions (env: COMPANION_CATALOG_DIR)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// openApp wires the application from cfg
func openApp(ctx context.Context, cfg *Config, logger *slog.Logger) (*factory.App, error) {
	return factory.New(ctx, factory.ConfigFrom(cfg.Config, logger))
}

// output returns a formatter writing to the command's stdout
func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		NewOutput(cfg.Output, os.Stderr).PrintError(err)
		os.Exit(1)
	}
}
