package application_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/adoready/pkg/application"
	"github.com/felixgeelhaar/adoready/pkg/domain"
	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
	"github.com/felixgeelhaar/adoready/pkg/domain/migration"
	"github.com/felixgeelhaar/adoready/pkg/domain/progress"
)

func migrationFixture() *assessment.Result {
	return &assessment.Result{
		OrganizationURL: "https://dev.azure.com/contoso",
		Projects: []assessment.Project{
			{
				Name: "alpha",
				Repositories: assessment.RepositorySection{
					Count: 2,
					Items: []assessment.Repository{
						{Name: "api", ID: "r1"},
						{Name: "web", ID: "r2"},
					},
				},
			},
		},
	}
}

func migrationRepo() *MockRepo {
	return &MockRepo{
		ADO: &domain.ADOConfig{
			OrganizationURL: "https://dev.azure.com/contoso",
			PAT:             "ado-secret",
		},
		GitHub: &domain.GitHubConfig{Token: "gh-secret", Org: "contoso-gh"},
	}
}

func newMigrationService(repo *MockRepo, results *MockResults, runner *MockRunner, hub *progress.Hub) *application.MigrationService {
	return application.NewMigrationService(repo, &MockAudit{}, results, runner, hub, zap.NewNop(), "cli")
}

func TestMigrationService_NoScanResults(t *testing.T) {
	hub := progress.NewHub()
	defer hub.Close()
	svc := newMigrationService(migrationRepo(), &MockResults{Err: application.ErrNoScanResults}, &MockRunner{}, hub)

	err := svc.StartMigration(migration.Request{Repos: []string{"api"}, TargetOrg: "contoso-gh"})
	if !errors.Is(err, application.ErrNoScanResults) {
		t.Errorf("StartMigration() error = %v, want ErrNoScanResults", err)
	}
}

func TestMigrationService_InvalidTargetOrg(t *testing.T) {
	hub := progress.NewHub()
	defer hub.Close()
	svc := newMigrationService(migrationRepo(), &MockResults{Res: migrationFixture()}, &MockRunner{}, hub)

	tests := []struct {
		name string
		req  migration.Request
	}{
		{"empty_org", migration.Request{Repos: []string{"api"}}},
		{"bad_org", migration.Request{Repos: []string{"api"}, TargetOrg: "-bad-"}},
		{"bad_visibility", migration.Request{Repos: []string{"api"}, TargetOrg: "contoso-gh", Visibility: "hidden"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.StartMigration(tt.req); !errors.Is(err, application.ErrInvalidRequest) {
				t.Errorf("StartMigration() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestMigrationService_BatchWithMissingRepo(t *testing.T) {
	hub := progress.NewHub()
	defer hub.Close()
	repo := migrationRepo()
	runner := &MockRunner{}
	svc := newMigrationService(repo, &MockResults{Res: migrationFixture()}, runner, hub)

	req := migration.Request{
		Repos:     []string{"api", "ghost", "web"},
		TargetOrg: "contoso-gh",
	}
	if err := svc.StartMigration(req); err != nil {
		t.Fatalf("StartMigration() error = %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return svc.Status().Status == application.MigrationCompleted
	})

	st := svc.Status()
	if st.Repos["api"].Status != migration.StatusCompleted {
		t.Errorf("api status = %s, want completed", st.Repos["api"].Status)
	}
	if st.Repos["api"].Progress != 100 || st.Repos["api"].Message != "Migration completed!" {
		t.Errorf("api item = %+v", st.Repos["api"])
	}
	if st.Repos["ghost"].Status != migration.StatusFailed || st.Repos["ghost"].Message != "Repo not found" {
		t.Errorf("ghost item = %+v", st.Repos["ghost"])
	}
	if st.Repos["web"].Status != migration.StatusCompleted {
		t.Errorf("web status = %s, want completed", st.Repos["web"].Status)
	}

	// The runner only saw the two resolvable repos, with credentials
	// and coordinates filled from config and the pinned scan.
	jobs := runner.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	first := jobs[0]
	if first.SourceOrg != "contoso" {
		t.Errorf("source org = %s, want contoso", first.SourceOrg)
	}
	if first.SourceProject != "alpha" || first.SourceRepo != "api" || first.TargetRepo != "api" {
		t.Errorf("job coordinates = %+v", first)
	}
	if first.SourcePAT != "ado-secret" || first.TargetToken != "gh-secret" {
		t.Error("job credentials not populated from config")
	}
}

func TestMigrationService_MissingGitHubToken(t *testing.T) {
	hub := progress.NewHub()
	defer hub.Close()
	repo := migrationRepo()
	repo.GitHub = nil
	runner := &MockRunner{}
	svc := newMigrationService(repo, &MockResults{Res: migrationFixture()}, runner, hub)

	req := migration.Request{Repos: []string{"api"}, TargetOrg: "contoso-gh"}
	if err := svc.StartMigration(req); err != nil {
		t.Fatalf("StartMigration() error = %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		return svc.Status().Status == application.MigrationCompleted
	})

	item := svc.Status().Repos["api"]
	if item.Status != migration.StatusFailed {
		t.Errorf("status = %s, want failed", item.Status)
	}
	if item.Message != "GitHub PAT not configured. Go to Configure page and add your GitHub token." {
		t.Errorf("message = %q", item.Message)
	}
	if len(runner.Jobs()) != 0 {
		t.Error("runner must not be invoked without a token")
	}
}

func TestMigrationService_SecondBatchConflicts(t *testing.T) {
	hub := progress.NewHub()
	defer hub.Close()
	runner := &MockRunner{Gate: make(chan struct{})}
	svc := newMigrationService(migrationRepo(), &MockResults{Res: migrationFixture()}, runner, hub)

	req := migration.Request{Repos: []string{"api"}, TargetOrg: "contoso-gh"}
	if err := svc.StartMigration(req); err != nil {
		t.Fatalf("StartMigration() error = %v", err)
	}
	if err := svc.StartMigration(req); !errors.Is(err, application.ErrMigrationInProgress) {
		t.Errorf("second StartMigration() error = %v, want ErrMigrationInProgress", err)
	}

	close(runner.Gate)
	waitFor(t, 2*time.Second, func() bool { return !svc.InProgress() })
}

func TestMigrationService_FailureMessageTruncated(t *testing.T) {
	hub := progress.NewHub()
	defer hub.Close()
	runner := &MockRunner{
		Outcomes: map[string]migration.Outcome{
			"api": {Succeeded: false, Message: strings.Repeat("x", 300)},
		},
	}
	svc := newMigrationService(migrationRepo(), &MockResults{Res: migrationFixture()}, runner, hub)

	req := migration.Request{Repos: []string{"api"}, TargetOrg: "contoso-gh"}
	if err := svc.StartMigration(req); err != nil {
		t.Fatalf("StartMigration() error = %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		return svc.Status().Status == application.MigrationCompleted
	})

	item := svc.Status().Repos["api"]
	if item.Status != migration.StatusFailed {
		t.Errorf("status = %s, want failed", item.Status)
	}
	if len(item.Message) != 100 {
		t.Errorf("message length = %d, want 100", len(item.Message))
	}
}

func TestMigrationService_EmptyRunnerMessageGetsFallback(t *testing.T) {
	hub := progress.NewHub()
	defer hub.Close()
	runner := &MockRunner{
		Outcomes: map[string]migration.Outcome{
			"api": {Succeeded: false},
		},
	}
	svc := newMigrationService(migrationRepo(), &MockResults{Res: migrationFixture()}, runner, hub)

	req := migration.Request{Repos: []string{"api"}, TargetOrg: "contoso-gh"}
	if err := svc.StartMigration(req); err != nil {
		t.Fatalf("StartMigration() error = %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		return svc.Status().Status == application.MigrationCompleted
	})

	if got := svc.Status().Repos["api"].Message; got != "Migration failed" {
		t.Errorf("message = %q, want fallback", got)
	}
}

func TestMigrationService_PublishesSnapshots(t *testing.T) {
	hub := progress.NewHub()
	defer hub.Close()
	svc := newMigrationService(migrationRepo(), &MockResults{Res: migrationFixture()}, &MockRunner{}, hub)

	events, cancel := hub.Subscribe()
	defer cancel()

	req := migration.Request{Repos: []string{"api"}, TargetOrg: "contoso-gh"}
	if err := svc.StartMigration(req); err != nil {
		t.Fatalf("StartMigration() error = %v", err)
	}

	var sequence []migration.Status
	for {
		select {
		case e := <-events:
			me, ok := e.(progress.MigrationEvent)
			if !ok {
				t.Fatalf("expected MigrationEvent, got %T", e)
			}
			sequence = append(sequence, me.Repos["api"].Status)
			if me.Status == application.MigrationCompleted {
				// Each event carried its own snapshot; earlier entries
				// must not have been rewritten by later transitions.
				if sequence[0] != migration.StatusInProgress {
					t.Errorf("first event status = %s, want in_progress", sequence[0])
				}
				if sequence[len(sequence)-1] != migration.StatusCompleted {
					t.Errorf("final event status = %s, want completed", sequence[len(sequence)-1])
				}
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for completion event")
		}
	}
}
