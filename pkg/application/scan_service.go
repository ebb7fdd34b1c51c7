package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/adoready/pkg/domain"
	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
	"github.com/felixgeelhaar/adoready/pkg/domain/progress"
)

// CollectorFactory builds an inventory collector bound to one
// organization and PAT. The scan service calls it once per run so a
// configuration change between scans takes effect without a restart.
type CollectorFactory func(organizationURL, pat string) assessment.Collector

// ScanService owns the scan lifecycle: at most one scan runs at a time,
// progress is published to the hub, and the finished result lands in a
// versioned snapshot slot plus the on-disk cache.
type ScanService struct {
	repo      domain.SettingsRepository
	audit     domain.AuditLogger
	collector CollectorFactory
	hub       *progress.Hub
	logger    *zap.Logger
	actor     string

	gate   Gate
	status Slot[ScanStatus]
	result Slot[*assessment.Result]
}

// NewScanService wires a scan service. actor tags audit events and is
// typically "cli" or "api".
func NewScanService(repo domain.SettingsRepository, audit domain.AuditLogger, collector CollectorFactory, hub *progress.Hub, logger *zap.Logger, actor string) *ScanService {
	s := &ScanService{
		repo:      repo,
		audit:     audit,
		collector: collector,
		hub:       hub,
		logger:    logger,
		actor:     actor,
	}
	s.status.Set(ScanStatus{Status: ScanIdle})
	return s
}

// StartScan claims the scan gate and launches the scan in the
// background. projectFilter restricts the scan to a single project when
// non-empty. Returns ErrScanInProgress when a scan already runs and
// ErrNotConfigured when no connection has been saved.
func (s *ScanService) StartScan(projectFilter string) error {
	if s.gate.InProgress() {
		return ErrScanInProgress
	}
	if !s.repo.HasADOConfig() {
		return ErrNotConfigured
	}
	if !s.gate.TryAcquire() {
		return ErrScanInProgress
	}

	s.status.Set(ScanStatus{Status: ScanStarting})
	if err := s.audit.Log("scan.started", s.actor, auditMeta(projectFilter)); err != nil {
		s.logger.Warn("failed to record audit event", zap.Error(err))
	}

	go s.run(context.Background(), projectFilter)
	return nil
}

// Status returns the current scan status snapshot.
func (s *ScanService) Status() ScanStatus {
	return s.status.Value()
}

// InProgress reports whether a scan currently holds the gate.
func (s *ScanService) InProgress() bool {
	return s.gate.InProgress()
}

// Result returns the most recent scan result, or ErrNoScanResults when
// no scan has completed and nothing was warmed from cache.
func (s *ScanService) Result() (*assessment.Result, error) {
	result := s.result.Value()
	if result == nil {
		return nil, ErrNoScanResults
	}
	return result, nil
}

// SetResult replaces the in-memory result snapshot. The serve command
// uses it to warm from cache at startup and when the cache file changes
// on disk.
func (s *ScanService) SetResult(result *assessment.Result) {
	s.result.Set(result)
}

func (s *ScanService) run(ctx context.Context, projectFilter string) {
	defer s.gate.Release()

	cfg, err := s.repo.LoadADOConfig()
	if err != nil {
		s.fail(fmt.Errorf("load config: %w", err))
		return
	}
	collector := s.collector(cfg.OrganizationURL, cfg.PAT)

	var projects []assessment.ProjectRef
	if projectFilter != "" {
		projects = []assessment.ProjectRef{{Name: projectFilter}}
	} else {
		projects, err = collector.ListProjects(ctx)
		if err != nil {
			s.fail(fmt.Errorf("list projects: %w", err))
			return
		}
	}

	total := len(projects)
	result := &assessment.Result{
		OrganizationURL: cfg.OrganizationURL,
		ScannedAt:       time.Now().UTC(),
		Projects:        make([]assessment.Project, 0, total),
	}

	for i, ref := range projects {
		st := ScanStatus{
			Status:          ScanScanning,
			Progress:        i * 100 / total,
			CurrentProject:  ref.Name,
			ProjectsScanned: i,
			TotalProjects:   total,
		}
		s.status.Set(st)
		s.publish(st)

		result.Projects = append(result.Projects, s.collectProject(ctx, collector, ref.Name))
	}

	result.Summary = assessment.Summarize(result.Projects)

	if err := s.repo.SaveScanCache(result); err != nil {
		s.fail(fmt.Errorf("save scan cache: %w", err))
		return
	}

	s.result.Set(result)
	done := ScanStatus{
		Status:          ScanCompleted,
		Progress:        100,
		ProjectsScanned: total,
		TotalProjects:   total,
	}
	s.status.Set(done)
	s.publish(done)

	s.logger.Info("scan completed",
		zap.Int("projects", total),
		zap.Int("repositories", result.Summary.TotalRepositories))
	if err := s.audit.Log("scan.completed", s.actor, map[string]interface{}{
		"projects":     total,
		"repositories": result.Summary.TotalRepositories,
		"overall":      result.Summary.Complexity.Overall,
	}); err != nil {
		s.logger.Warn("failed to record audit event", zap.Error(err))
	}
	s.bumpUsage(func(u *domain.UsageStats) { u.TotalScans++ })
}

// collectProject gathers every asset category for one project.
// Categories run concurrently; a category that fails is absorbed as its
// zero value so one broken API surface does not hide the rest of the
// project. Context cancellation is not absorbed.
func (s *ScanService) collectProject(ctx context.Context, c assessment.Collector, name string) assessment.Project {
	project := assessment.Project{Name: name}

	g, gctx := errgroup.WithContext(ctx)
	category := func(label string, fn func(context.Context) error) {
		g.Go(func() error {
			err := fn(gctx)
			if err == nil {
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			s.logger.Debug("category collection failed",
				zap.String("project", name),
				zap.String("category", label),
				zap.Error(err))
			return nil
		})
	}

	category("repositories", func(ctx context.Context) error {
		repos, err := c.ListRepositories(ctx, name)
		if err != nil {
			return err
		}
		tfvc, err := c.HasTFVC(ctx, name)
		if err != nil {
			s.logger.Debug("tfvc check failed", zap.String("project", name), zap.Error(err))
		}
		project.Repositories = assessment.RepositorySection{
			Count:    len(repos),
			TFVCUsed: tfvc,
			Items:    repos,
		}
		return nil
	})

	category("pipelines", func(ctx context.Context) error {
		yaml, err := c.ListPipelines(ctx, name)
		if err != nil {
			return err
		}
		builds, err := c.ListBuildDefinitions(ctx, name)
		if err != nil {
			return err
		}
		releases, err := c.ListReleaseDefinitions(ctx, name)
		if err != nil {
			return err
		}
		classic := 0
		for _, d := range builds {
			if d.Type == "build" {
				classic++
			}
		}
		project.Pipelines = assessment.PipelineSection{
			YAMLCount:          len(yaml),
			BuildDefinitions:   len(builds),
			ReleaseDefinitions: len(releases),
			ClassicCount:       classic,
		}
		return nil
	})

	category("work_items", func(ctx context.Context) error {
		types, err := c.ListWorkItemTypes(ctx, name)
		if err != nil {
			return err
		}
		counts, err := c.CountWorkItemsByType(ctx, name)
		if err != nil {
			return err
		}
		fields, err := c.CountCustomFields(ctx, name)
		if err != nil {
			s.logger.Debug("custom field count failed", zap.String("project", name), zap.Error(err))
		}
		if counts == nil {
			counts = map[string]int{}
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		custom := []string{}
		for _, t := range types {
			if t.Custom {
				custom = append(custom, t.Name)
			}
		}
		project.WorkItems = assessment.WorkItemSection{
			Total:        total,
			ByType:       counts,
			CustomTypes:  custom,
			CustomFields: fields,
		}
		return nil
	})

	category("teams", func(ctx context.Context) error {
		teams, err := c.ListTeams(ctx, name)
		if err != nil {
			return err
		}
		project.Teams = assessment.TeamSection{Count: len(teams)}
		return nil
	})

	category("dependencies", func(ctx context.Context) error {
		connections, err := c.ListServiceConnections(ctx, name)
		if err != nil {
			return err
		}
		groups, err := c.ListVariableGroups(ctx, name)
		if err != nil {
			return err
		}
		project.Dependencies = assessment.DependencySection{
			ServiceConnections: len(connections),
			VariableGroups:     len(groups),
		}
		return nil
	})

	category("test_plans", func(ctx context.Context) error {
		plans, err := c.ListTestPlans(ctx, name)
		if err != nil {
			return err
		}
		project.TestPlans = assessment.TestPlanSection{Count: len(plans)}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("project collection interrupted", zap.String("project", name), zap.Error(err))
	}

	if project.WorkItems.ByType == nil {
		project.WorkItems.ByType = map[string]int{}
	}
	if project.WorkItems.CustomTypes == nil {
		project.WorkItems.CustomTypes = []string{}
	}
	if project.Repositories.Items == nil {
		project.Repositories.Items = []assessment.Repository{}
	}
	return project
}

func (s *ScanService) fail(err error) {
	s.logger.Error("scan failed", zap.Error(err))
	st := ScanStatus{Status: ScanFailed, Error: err.Error()}
	s.status.Set(st)
	s.publish(st)
}

func (s *ScanService) publish(st ScanStatus) {
	e := progress.NewScanEvent(st.Status, st.Progress)
	e.CurrentProject = st.CurrentProject
	e.ProjectsScanned = st.ProjectsScanned
	e.TotalProjects = st.TotalProjects
	e.Error = st.Error
	s.hub.Publish(e)
}

func (s *ScanService) bumpUsage(apply func(*domain.UsageStats)) {
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

func auditMeta(projectFilter string) map[string]interface{} {
	if projectFilter == "" {
		return nil
	}
	return map[string]interface{}{"project": projectFilter}
}
