package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/setlistx/internal/server"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := int(cmd.Int("port")); port != 0 {
		if port < 0 {
			return fmt.Errorf("%w: --port must be positive", shared.ErrInvalidFlag)
		}
		cfg.Port = port
	}

	if err := r.open(); err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	catalog := server.Catalog{Bands: r.bands, Songs: r.songs, Events: r.events, Tags: r.tags}
	api := server.NewAPI(r.service, catalog, r.config.Share.Phone, logger)
	router := server.NewRouter(api, cfg.RateLimit, cfg.Burst)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.writePlain("Serving on http://%s (Ctrl+C to stop)\n", cfg.Addr())
	return server.NewServer(cfg.Addr(), router, logger).Run(ctx)
}
