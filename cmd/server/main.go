package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/tabletop-companion/internal/api"
	"github.com/mcoot/tabletop-companion/internal/api/events"
	"github.com/mcoot/tabletop-companion/internal/config"
	"github.com/mcoot/tabletop-companion/internal/factory"
	"github.com/mcoot/tabletop-companion/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, logCloser, err := logging.NewWithFile(cfg.Log, "server.log")
	if err != nil {
		slog.Error("failed to set up logging", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, factory.ConfigFrom(cfg, logger))
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	logger.Info("catalog loaded", slog.Int("games", app.Catalog.Len()))

	publisher := events.NewPublisher(events.NewHubManager(logger), logger)
	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Catalog:  app.Catalog,
		Engine:   app.Engine,
		Profiles: app.Profiles,
		Events:   publisher,
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = cfg.HTTPAddr
	server := api.NewServer(router, serverCfg, logger)
	server.OnShutdown(publisher.Close)
	return server.Run(ctx)
}
