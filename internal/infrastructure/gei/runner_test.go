package gei

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/adoready/pkg/domain/migration"
)

func testJob() migration.Job {
	return migration.Job{
		SourceOrg:     "contoso",
		SourceProject: "alpha",
		SourceRepo:    "api",
		TargetOrg:     "contoso-gh",
		TargetRepo:    "api",
		SourcePAT:     "ado-secret",
		TargetToken:   "gh-secret",
	}
}

// writeScript drops a fake gh executable into dir and returns its path.
func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake shell scripts are not portable to windows")
	}

	path := filepath.Join(dir, "fake-gh")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestMigrateRepoSuccess(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "invocation")
	binary := writeScript(t, dir,
		`echo "$@" > "`+capture+`"
echo "GH_PAT=$GH_PAT" >> "`+capture+`"
exit 0`)

	runner := NewWithBinary(binary, zap.NewNop())
	outcome := runner.MigrateRepo(context.Background(), testJob())

	if !outcome.Succeeded {
		t.Fatalf("Succeeded = false, message %q", outcome.Message)
	}
	if outcome.Message != "Success" {
		t.Errorf("Message = %q, want Success", outcome.Message)
	}

	recorded, err := os.ReadFile(capture)
	if err != nil {
		t.Fatalf("read invocation capture: %v", err)
	}
	invocation := string(recorded)
	for _, want := range []string{
		"ado2gh migrate-repo",
		"--ado-org contoso",
		"--ado-team-project alpha",
		"--ado-repo api",
		"--github-org contoso-gh",
		"--github-repo api",
		"--ado-pat ado-secret",
		"GH_PAT=gh-secret",
	} {
		if !strings.Contains(invocation, want) {
			t.Errorf("invocation missing %q:\n%s", want, invocation)
		}
	}
	if strings.Contains(invocation, "--target-repo-visibility") {
		t.Errorf("default visibility must not pass a flag:\n%s", invocation)
	}
}

func TestMigrateRepoFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "stderr wins",
			body: `echo "importer progress" ; echo "repository is locked" >&2 ; exit 1`,
			want: "repository is locked",
		},
		{
			name: "stdout as fallback",
			body: `echo "rate limit exceeded" ; exit 1`,
			want: "rate limit exceeded",
		},
		{
			name: "silent failure",
			body: `exit 1`,
			want: "Unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binary := writeScript(t, t.TempDir(), tt.body)
			runner := NewWithBinary(binary, zap.NewNop())

			outcome := runner.MigrateRepo(context.Background(), testJob())
			if outcome.Succeeded {
				t.Fatal("Succeeded = true, want false")
			}
			if outcome.Message != tt.want {
				t.Errorf("Message = %q, want %q", outcome.Message, tt.want)
			}
		})
	}
}

func TestMigrateRepoTruncatesLongOutput(t *testing.T) {
	long := strings.Repeat("x", 300)
	binary := writeScript(t, t.TempDir(), `echo "`+long+`" >&2 ; exit 1`)
	runner := NewWithBinary(binary, zap.NewNop())

	outcome := runner.MigrateRepo(context.Background(), testJob())
	if outcome.Succeeded {
		t.Fatal("Succeeded = true, want false")
	}
	if len(outcome.Message) != messageLimit {
		t.Errorf("len(Message) = %d, want %d", len(outcome.Message), messageLimit)
	}
}

func TestMigrateRepoMissingBinary(t *testing.T) {
	runner := NewWithBinary(filepath.Join(t.TempDir(), "no-such-gh"), zap.NewNop())

	outcome := runner.MigrateRepo(context.Background(), testJob())
	if outcome.Succeeded {
		t.Fatal("Succeeded = true, want false")
	}
	if outcome.Message == "" {
		t.Error("Message is empty, want an error description")
	}
}

func TestBuildArgsVisibility(t *testing.T) {
	tests := []struct {
		name       string
		visibility string
		wantFlag   bool
	}{
		{name: "empty means importer default", visibility: "", wantFlag: false},
		{name: "private is the default", visibility: "private", wantFlag: false},
		{name: "public is passed through", visibility: "public", wantFlag: true},
		{name: "internal is passed through", visibility: "internal", wantFlag: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := testJob()
			job.Visibility = tt.visibility

			args := strings.Join(buildArgs(job), " ")
			got := strings.Contains(args, "--target-repo-visibility "+tt.visibility)
			if got != tt.wantFlag {
				t.Errorf("visibility flag present = %v, want %v (args %q)", got, tt.wantFlag, args)
			}
		})
	}
}

func TestCheckInstalled(t *testing.T) {
	t.Run("binary missing", func(t *testing.T) {
		runner := NewWithBinary(filepath.Join(t.TempDir(), "no-such-gh"), zap.NewNop())
		if err := runner.CheckInstalled(context.Background()); err == nil {
			t.Error("CheckInstalled() = nil, want error")
		}
	})

	t.Run("extension missing", func(t *testing.T) {
		binary := writeScript(t, t.TempDir(), `echo "gh copilot  v1.0.0"`)
		runner := NewWithBinary(binary, zap.NewNop())
		if err := runner.CheckInstalled(context.Background()); err == nil {
			t.Error("CheckInstalled() = nil, want error")
		}
	})

	t.Run("extension installed", func(t *testing.T) {
		binary := writeScript(t, t.TempDir(), `echo "github/gh-ado2gh  v1.5.0"`)
		runner := NewWithBinary(binary, zap.NewNop())
		if err := runner.CheckInstalled(context.Background()); err != nil {
			t.Errorf("CheckInstalled() = %v, want nil", err)
		}
	})
}
