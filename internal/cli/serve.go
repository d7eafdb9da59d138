package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkmbinder/pkmbinder/internal/refresh"
	"github.com/pkmbinder/pkmbinder/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		noCron  bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the daily price refresh schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.ListenAddr
			}

			store, err := openBinder(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			logger.Info("database ready", "path", cfg.DBPath)

			catalog := newCatalog()
			refresher := refresh.NewService(store, catalog, logger,
				refresh.WithWorkers(workers),
				refresh.WithRate(cfg.RatePerSec),
			)

			srv := server.New(catalog, store, refresher, logger,
				server.WithPageSize(cfg.PageSize))

			httpServer := &http.Server{
				Addr:    addr,
				Handler: srv.Handler(),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var sched *refresh.Scheduler
			if !noCron {
				sched = refresh.NewScheduler(refresher, cfg.RefreshCron, logger)
				if err := sched.Start(); err != nil {
					return err
				}
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server starting", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				if sched != nil {
					sched.Stop()
				}
				return err
			case <-ctx.Done():
			}
			logger.Info("shutting down")

			if sched != nil {
				sched.Stop()
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8480)")
	cmd.Flags().BoolVar(&noCron, "no-cron", false, "Disable the scheduled price refresh")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent price fetchers for refreshes")

	return cmd
}
