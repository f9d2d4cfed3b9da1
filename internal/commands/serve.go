package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bankpush/bankpush/internal/logger"
	"github.com/bankpush/bankpush/internal/upload"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			log := logger.FromContext(cmd.Context())

			proc, err := newProcessor(cfg, log)
			if err != nil {
				return err
			}
			srv := upload.NewServer(upload.Config{
				Processor:      proc,
				Accounts:       cfg.Router(),
				BudgetID:       cfg.YNAB.BudgetID,
				Logger:         log,
				MaxUploadBytes: cfg.Server.MaxUploadBytes,
				UploadsPerMin:  cfg.Server.UploadsPerMin,
				MaxOperations:  cfg.Server.MaxOperations,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, srv, cfg.Server.Addr, cfg.Server.WriteTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config and PORT)")

	return cmd
}

// serve runs the HTTP server and websocket hub until ctx is cancelled.
func serve(ctx context.Context, srv *upload.Server, addr string, writeTimeout time.Duration) error {
	log := logger.FromContext(ctx)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		srv.Hub().Run(ctx)
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("upload service listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down upload service")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
