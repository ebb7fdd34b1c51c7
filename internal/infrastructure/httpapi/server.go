// Package httpapi serves the REST and WebSocket API consumed by the
// adoready dashboard.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/adoready/pkg/application"
	"github.com/felixgeelhaar/adoready/pkg/domain"
	"github.com/felixgeelhaar/adoready/pkg/domain/progress"
)

// Config carries the dependencies of the API server.
type Config struct {
	Repo       domain.SettingsRepository
	Scans      *application.ScanService
	Migrations *application.MigrationService
	Hub        *progress.Hub
	Collect    application.CollectorFactory
	Version    string
	Logger     *zap.Logger
}

// Server exposes scan and migration operations over HTTP.
type Server struct {
	repo       domain.SettingsRepository
	scans      *application.ScanService
	migrations *application.MigrationService
	hub        *progress.Hub
	collect    application.CollectorFactory
	version    string
	logger     *zap.Logger
}

// NewServer assembles the API server from its dependencies.
func NewServer(cfg Config) *Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		repo:       cfg.Repo,
		scans:      cfg.Scans,
		migrations: cfg.Migrations,
		hub:        cfg.Hub,
		collect:    cfg.Collect,
		version:    version,
		logger:     logger,
	}
}

// Router builds the route table. The progress socket sits outside the
// middleware group: response recording breaks connection hijacking.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(s.logRequests)
		r.Use(corsMiddleware)

		r.Route("/api", func(r chi.Router) {
			r.Get("/health", s.handleHealth)
			r.Get("/config", s.handleGetConfig)
			r.Post("/config", s.handleSaveConfig)
			r.Delete("/config", s.handleDeleteConfig)
			r.Get("/test-connection", s.handleTestConnection)
			r.Post("/scan", s.handleStartScan)
			r.Get("/scan/status", s.handleScanStatus)
			r.Get("/scan/results", s.handleScanResults)
			r.Get("/repos", s.handleListRepos)
			r.Post("/migrate", s.handleStartMigration)
			r.Get("/migrate/status", s.handleMigrationStatus)
		})
	})

	r.Get("/ws/progress", s.handleProgressSocket)

	return r
}

// Start serves the API until ctx is cancelled, then shuts down
// gracefully, draining in-flight requests.
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	s.logger.Info("api server listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
