package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/resume-tailor/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server that exposes the diff, enrichment, regeneration and tailoring endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := build(ctx, a.cfg, a.logger, true)
			if err != nil {
				return err
			}
			defer c.Close()

			srv := server.New(server.Config{
				Addr:            a.cfg.Server.Addr,
				AllowedOrigins:  a.cfg.Server.AllowedOrigins,
				ReadTimeout:     a.cfg.Server.ReadTimeout,
				WriteTimeout:    a.cfg.Server.WriteTimeout,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
			}, c.service, a.logger)
			return srv.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	return cmd
}
