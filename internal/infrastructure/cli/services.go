package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/adoready/internal/infrastructure/ado"
	"github.com/felixgeelhaar/adoready/internal/infrastructure/gei"
	"github.com/felixgeelhaar/adoready/pkg/application"
	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
	"github.com/felixgeelhaar/adoready/pkg/domain/progress"
	"github.com/felixgeelhaar/adoready/pkg/storage"
)

// services bundles the wiring the commands share.
type services struct {
	Repo       *storage.FilesystemRepository
	Hub        *progress.Hub
	Scans      *application.ScanService
	Migrations *application.MigrationService
	Collect    application.CollectorFactory
}

// openRepo resolves the settings directory. The directory does not have
// to exist yet; commands that write call Initialize first.
func openRepo() (*storage.FilesystemRepository, error) {
	root, err := storage.DefaultRoot()
	if err != nil {
		return nil, fmt.Errorf("resolve settings directory: %w", err)
	}
	return storage.NewFilesystemRepository(root), nil
}

// buildServices wires the scan and migration orchestrators around a
// settings repository, the same way the API server does.
func buildServices(repo *storage.FilesystemRepository, logger *zap.Logger, actor string) *services {
	hub := progress.NewHub()
	audit := application.NewAuditService(repo)
	collect := func(organizationURL, pat string) assessment.Collector {
		return ado.New(organizationURL, pat)
	}
	scans := application.NewScanService(repo, audit, collect, hub, logger, actor)
	migrations := application.NewMigrationService(repo, audit, scans, gei.New(logger), hub, logger, actor)
	return &services{
		Repo:       repo,
		Hub:        hub,
		Scans:      scans,
		Migrations: migrations,
		Collect:    collect,
	}
}

// loadServices wires everything with a no-op logger for one-shot
// commands; serve builds its own with structured logging.
func loadServices() (*services, error) {
	repo, err := openRepo()
	if err != nil {
		return nil, err
	}
	return buildServices(repo, zap.NewNop(), "cli"), nil
}
