package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/adoready/internal/infrastructure/httpapi"
	"github.com/felixgeelhaar/adoready/internal/infrastructure/watch"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the WebSocket progress stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		repo, err := openRepo()
		if err != nil {
			return MapError(err)
		}
		// The watcher needs the settings directory to exist.
		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("initialize settings directory: %w", err)
		}

		svc := buildServices(repo, logger, "api")
		defer svc.Hub.Close()

		if cached, err := repo.LoadScanCache(); err == nil {
			svc.Scans.SetResult(cached)
			logger.Info("scan cache warmed", zap.Int("projects", len(cached.Projects)))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cachePath, err := repo.CachePath()
		if err != nil {
			return fmt.Errorf("resolve cache path: %w", err)
		}
		watcher, err := watch.NewCacheWatcher(cachePath, 0, func() {
			// A running scan owns the result slot; it will publish
			// its own snapshot when it finishes.
			if svc.Scans.InProgress() {
				return
			}
			cached, err := repo.LoadScanCache()
			if err != nil {
				logger.Warn("cache changed but reload failed", zap.Error(err))
				return
			}
			svc.Scans.SetResult(cached)
			logger.Info("scan cache reloaded")
		}, logger)
		if err != nil {
			return fmt.Errorf("initialize cache watcher: %w", err)
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("cache watcher stopped", zap.Error(err))
			}
		}()

		server := httpapi.NewServer(httpapi.Config{
			Repo:       repo,
			Scans:      svc.Scans,
			Migrations: svc.Migrations,
			Hub:        svc.Hub,
			Collect:    svc.Collect,
			Version:    Version,
			Logger:     logger,
		})

		fmt.Printf("Serving the adoready API on %s\n", serveAddr)
		return server.Start(ctx, serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	RootCmd.AddCommand(serveCmd)
}
