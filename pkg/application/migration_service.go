package application

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/adoready/pkg/domain"
	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
	"github.com/felixgeelhaar/adoready/pkg/domain/migration"
	"github.com/felixgeelhaar/adoready/pkg/domain/progress"
)

// messageLimit caps user-facing failure messages per repository.
const messageLimit = 100

// ResultSource yields the scan snapshot a migration resolves repos
// against. ScanService implements it.
type ResultSource interface {
	Result() (*assessment.Result, error)
}

// MigrationService owns the migration batch lifecycle. At most one
// batch runs at a time; repositories migrate sequentially and failures
// stay scoped to their item. The scan snapshot is pinned when the batch
// starts, so a scan finishing mid-batch cannot change repo resolution.
type MigrationService struct {
	repo    domain.SettingsRepository
	audit   domain.AuditLogger
	results ResultSource
	runner  migration.Runner
	hub     *progress.Hub
	logger  *zap.Logger
	actor   string

	gate   Gate
	status Slot[MigrationStatus]
}

// NewMigrationService wires a migration service. actor tags audit
// events and is typically "cli" or "api".
func NewMigrationService(repo domain.SettingsRepository, audit domain.AuditLogger, results ResultSource, runner migration.Runner, hub *progress.Hub, logger *zap.Logger, actor string) *MigrationService {
	s := &MigrationService{
		repo:    repo,
		audit:   audit,
		results: results,
		runner:  runner,
		hub:     hub,
		logger:  logger,
		actor:   actor,
	}
	s.status.Set(MigrationStatus{Status: MigrationIdle, Repos: map[string]migration.Item{}})
	return s
}

// StartMigration validates the request, pins the current scan snapshot,
// claims the migration gate, and launches the batch in the background.
func (s *MigrationService) StartMigration(req migration.Request) error {
	if _, err := domain.NewOrgName(req.TargetOrg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	switch req.Visibility {
	case "", "private", "public", "internal":
	default:
		return fmt.Errorf("%w: unknown visibility %q", ErrInvalidRequest, req.Visibility)
	}

	if s.gate.InProgress() {
		return ErrMigrationInProgress
	}

	// Pin the snapshot before claiming the gate; a concurrent scan
	// completing later must not change which repos this batch resolves.
	result, err := s.results.Result()
	if err != nil {
		return err
	}

	if !s.gate.TryAcquire() {
		return ErrMigrationInProgress
	}

	items := make(map[string]migration.Item, len(req.Repos))
	for _, name := range req.Repos {
		items[name] = migration.Item{Repo: name, Status: migration.StatusPending}
	}
	s.status.Set(MigrationStatus{Status: MigrationStarting, Repos: items})

	if err := s.audit.Log("migration.started", s.actor, map[string]interface{}{
		"repos":      len(req.Repos),
		"target_org": req.TargetOrg,
	}); err != nil {
		s.logger.Warn("failed to record audit event", zap.Error(err))
	}

	go s.run(context.Background(), result, req)
	return nil
}

// Status returns the current migration status snapshot.
func (s *MigrationService) Status() MigrationStatus {
	return s.status.Value()
}

// InProgress reports whether a batch currently holds the gate.
func (s *MigrationService) InProgress() bool {
	return s.gate.InProgress()
}

func (s *MigrationService) run(ctx context.Context, result *assessment.Result, req migration.Request) {
	defer s.gate.Release()

	items := make(map[string]migration.Item, len(req.Repos))
	for _, name := range req.Repos {
		items[name] = migration.Item{Repo: name, Status: migration.StatusPending}
	}

	cfg, err := s.repo.LoadADOConfig()
	if err != nil {
		s.failBatch(items, fmt.Errorf("load config: %w", err))
		return
	}
	sourceOrg := path.Base(strings.TrimRight(cfg.OrganizationURL, "/"))

	token := ""
	if ghCfg, err := s.repo.LoadGitHubConfig(); err == nil && ghCfg != nil {
		token = ghCfg.Token
	}

	for _, name := range req.Repos {
		fsm, err := migration.NewItemStateMachine(name)
		if err != nil {
			s.failBatch(items, fmt.Errorf("init state machine: %w", err))
			return
		}

		s.transition(fsm, "start")
		items[name] = migration.Item{
			Repo:     name,
			Status:   migration.StatusInProgress,
			Message:  "Starting migration...",
			Progress: 0,
		}
		s.setAndPublish(MigrationInProgress, items)

		ref, found := result.FindRepo(name)
		if !found {
			s.transition(fsm, "fail")
			items[name] = migration.Item{Repo: name, Status: migration.StatusFailed, Message: "Repo not found"}
			s.setAndPublish(MigrationInProgress, items)
			continue
		}

		if token == "" {
			s.transition(fsm, "fail")
			items[name] = migration.Item{
				Repo:    name,
				Status:  migration.StatusFailed,
				Message: "GitHub PAT not configured. Go to Configure page and add your GitHub token.",
			}
			s.setAndPublish(MigrationInProgress, items)
			continue
		}

		outcome := s.runner.MigrateRepo(ctx, migration.Job{
			SourceOrg:     sourceOrg,
			SourceProject: ref.Project,
			SourceRepo:    name,
			TargetOrg:     req.TargetOrg,
			TargetRepo:    name,
			Visibility:    req.Visibility,
			SourcePAT:     cfg.PAT,
			TargetToken:   token,
		})

		if outcome.Succeeded {
			s.transition(fsm, "complete")
			items[name] = migration.Item{
				Repo:     name,
				Status:   migration.StatusCompleted,
				Progress: 100,
				Message:  "Migration completed!",
			}
		} else {
			s.transition(fsm, "fail")
			items[name] = migration.Item{
				Repo:    name,
				Status:  migration.StatusFailed,
				Message: failureMessage(outcome.Message),
			}
		}
		s.setAndPublish(MigrationInProgress, items)
	}

	s.setAndPublish(MigrationCompleted, items)

	s.logger.Info("migration batch finished", zap.Int("repos", len(req.Repos)))
	if err := s.audit.Log("migration.completed", s.actor, map[string]interface{}{
		"repos": len(req.Repos),
	}); err != nil {
		s.logger.Warn("failed to record audit event", zap.Error(err))
	}
	s.bumpUsage(func(u *domain.UsageStats) { u.TotalMigrations++ })
}

// transition drives an item state machine; an illegal transition is a
// programming error, logged rather than propagated.
func (s *MigrationService) transition(fsm *migration.ItemStateMachine, event string) {
	if err := fsm.Transition(event); err != nil {
		s.logger.Warn("illegal item transition", zap.String("event", event), zap.Error(err))
	}
}

// setAndPublish snapshots the working items into a fresh map, stores it
// in the status slot, and broadcasts the same snapshot.
func (s *MigrationService) setAndPublish(status string, items map[string]migration.Item) {
	snap := make(map[string]migration.Item, len(items))
	for k, v := range items {
		snap[k] = v
	}
	s.status.Set(MigrationStatus{Status: status, Repos: snap})
	s.hub.Publish(progress.NewMigrationEvent(status, snap))
}

func (s *MigrationService) failBatch(items map[string]migration.Item, err error) {
	s.logger.Error("migration batch failed", zap.Error(err))
	snap := make(map[string]migration.Item, len(items))
	for k, v := range items {
		snap[k] = v
	}
	st := MigrationStatus{Status: MigrationFailed, Repos: snap, Error: err.Error()}
	s.status.Set(st)
	e := progress.NewMigrationEvent(MigrationFailed, snap)
	e.Error = err.Error()
	s.hub.Publish(e)
}

func (s *MigrationService) bumpUsage(apply func(*domain.UsageStats)) {
	usage, err := s.repo.LoadUsage()
	if err != nil || usage == nil {
		usage = &domain.UsageStats{}
	}
	apply(usage)
	usage.LastActivityAt = time.Now().UTC()
	if err := s.repo.UpdateUsage(*usage); err != nil {
		s.logger.Warn("failed to update usage stats", zap.Error(err))
	}
}

// failureMessage caps a runner message for display, falling back to a
// generic line when the runner produced nothing.
func failureMessage(msg string) string {
	if msg == "" {
		return "Migration failed"
	}
	runes := []rune(msg)
	if len(runes) > messageLimit {
		return string(runes[:messageLimit])
	}
	return msg
}
