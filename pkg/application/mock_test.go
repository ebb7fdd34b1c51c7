package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/adoready/pkg/domain"
	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
	"github.com/felixgeelhaar/adoready/pkg/domain/migration"
)

// MockRepo is an in-memory SettingsRepository. Scan and migration runs
// touch it from background goroutines, so every accessor locks.
type MockRepo struct {
	mu             sync.Mutex
	ADO            *domain.ADOConfig
	GitHub         *domain.GitHubConfig
	Cache          *assessment.Result
	Events         []domain.Event
	Usage          domain.UsageStats
	Initialized    bool
	CacheSaveError error
	EventSaveError error
}

func (m *MockRepo) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Initialized = true
	return nil
}

func (m *MockRepo) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Initialized
}

func (m *MockRepo) SaveADOConfig(cfg *domain.ADOConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ADO = cfg
	return nil
}

func (m *MockRepo) LoadADOConfig() (*domain.ADOConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ADO == nil {
		return nil, errors.New("config not found")
	}
	return m.ADO, nil
}

func (m *MockRepo) DeleteADOConfig() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ADO = nil
	return nil
}

func (m *MockRepo) HasADOConfig() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ADO != nil
}

func (m *MockRepo) SaveGitHubConfig(cfg *domain.GitHubConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GitHub = cfg
	return nil
}

func (m *MockRepo) LoadGitHubConfig() (*domain.GitHubConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GitHub == nil {
		return nil, errors.New("config not found")
	}
	return m.GitHub, nil
}

func (m *MockRepo) SaveScanCache(result *assessment.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CacheSaveError != nil {
		return m.CacheSaveError
	}
	m.Cache = result
	return nil
}

func (m *MockRepo) LoadScanCache() (*assessment.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Cache == nil {
		return nil, errors.New("cache not found")
	}
	return m.Cache, nil
}

func (m *MockRepo) HasScanCache() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Cache != nil
}

func (m *MockRepo) RecordEvent(e domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EventSaveError != nil {
		return m.EventSaveError
	}
	m.Events = append(m.Events, e)
	return nil
}

func (m *MockRepo) LoadEvents() ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Event(nil), m.Events...), nil
}

func (m *MockRepo) UpdateUsage(u domain.UsageStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Usage = u
	return nil
}

func (m *MockRepo) LoadUsage() (*domain.UsageStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.Usage
	return &u, nil
}

func (m *MockRepo) CachedResult() *assessment.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Cache
}

func (m *MockRepo) CurrentUsage() domain.UsageStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Usage
}

// MockAudit records audit actions in call order.
type MockAudit struct {
	mu      sync.Mutex
	actions []string
}

func (m *MockAudit) Log(action string, actor string, metadata map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
	return nil
}

func (m *MockAudit) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.actions...)
}

// MockCollector serves canned per-project inventories. Gate, when
// non-nil, blocks ListProjects until the channel is closed.
type MockCollector struct {
	Projects    []assessment.ProjectRef
	ProjectsErr error
	Gate        chan struct{}

	Repos        map[string][]assessment.Repository
	TFVC         map[string]bool
	Pipelines    map[string][]string
	Builds       map[string][]assessment.BuildDefinition
	Releases     map[string][]string
	Types        map[string][]assessment.WorkItemType
	Counts       map[string]map[string]int
	Fields       map[string]int
	Teams        map[string][]string
	Connections  map[string][]string
	Groups       map[string][]string
	Plans        map[string][]string
	PipelinesErr error
}

func (m *MockCollector) ListProjects(ctx context.Context) ([]assessment.ProjectRef, error) {
	if m.Gate != nil {
		<-m.Gate
	}
	return m.Projects, m.ProjectsErr
}

func (m *MockCollector) ListRepositories(ctx context.Context, project string) ([]assessment.Repository, error) {
	return m.Repos[project], nil
}

func (m *MockCollector) HasTFVC(ctx context.Context, project string) (bool, error) {
	return m.TFVC[project], nil
}

func (m *MockCollector) ListPipelines(ctx context.Context, project string) ([]string, error) {
	if m.PipelinesErr != nil {
		return nil, m.PipelinesErr
	}
	return m.Pipelines[project], nil
}

func (m *MockCollector) ListBuildDefinitions(ctx context.Context, project string) ([]assessment.BuildDefinition, error) {
	return m.Builds[project], nil
}

func (m *MockCollector) ListReleaseDefinitions(ctx context.Context, project string) ([]string, error) {
	return m.Releases[project], nil
}

func (m *MockCollector) ListWorkItemTypes(ctx context.Context, project string) ([]assessment.WorkItemType, error) {
	return m.Types[project], nil
}

func (m *MockCollector) CountWorkItemsByType(ctx context.Context, project string) (map[string]int, error) {
	return m.Counts[project], nil
}

func (m *MockCollector) CountCustomFields(ctx context.Context, project string) (int, error) {
	return m.Fields[project], nil
}

func (m *MockCollector) ListTeams(ctx context.Context, project string) ([]string, error) {
	return m.Teams[project], nil
}

func (m *MockCollector) ListServiceConnections(ctx context.Context, project string) ([]string, error) {
	return m.Connections[project], nil
}

func (m *MockCollector) ListVariableGroups(ctx context.Context, project string) ([]string, error) {
	return m.Groups[project], nil
}

func (m *MockCollector) ListTestPlans(ctx context.Context, project string) ([]string, error) {
	return m.Plans[project], nil
}

// MockRunner returns canned outcomes by repository name and records
// every job it was handed. Gate, when non-nil, blocks each job until
// the channel is closed.
type MockRunner struct {
	mu       sync.Mutex
	Outcomes map[string]migration.Outcome
	Gate     chan struct{}
	jobs     []migration.Job
}

func (m *MockRunner) MigrateRepo(ctx context.Context, job migration.Job) migration.Outcome {
	if m.Gate != nil {
		<-m.Gate
	}
	m.mu.Lock()
	m.jobs = append(m.jobs, job)
	outcome, ok := m.Outcomes[job.SourceRepo]
	m.mu.Unlock()
	if !ok {
		return migration.Outcome{Succeeded: true, Message: "Success"}
	}
	return outcome
}

func (m *MockRunner) Jobs() []migration.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]migration.Job(nil), m.jobs...)
}

// MockResults is a fixed ResultSource.
type MockResults struct {
	Res *assessment.Result
	Err error
}

func (m *MockResults) Result() (*assessment.Result, error) {
	return m.Res, m.Err
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
