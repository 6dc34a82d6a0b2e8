package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/tabletop-companion/internal/api"
	"github.com/mcoot/tabletop-companion/internal/api/events"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

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
		},
	}

	cmd.Flags().StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "Listen address (env: COMPANION_HTTP_ADDR)")

	return cmd
}
