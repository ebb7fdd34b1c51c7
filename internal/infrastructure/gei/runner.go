// Package gei drives repository migrations through the GitHub CLI's
// ado2gh extension (GitHub Enterprise Importer).
package gei

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/adoready/pkg/domain/migration"
)

const (
	defaultBinary = "gh"

	// A single repository migration can legitimately take a long time
	// for large repos, but not forever.
	migrationTimeout = 30 * time.Minute

	// Importer output is unbounded; only the head of it is useful in
	// a status message.
	messageLimit = 200
)

// Runner executes migrations by shelling out to gh ado2gh.
type Runner struct {
	binary string
	logger *zap.Logger
}

var _ migration.Runner = (*Runner)(nil)

// New creates a runner that invokes the gh binary found on PATH.
func New(logger *zap.Logger) *Runner {
	return NewWithBinary(defaultBinary, logger)
}

// NewWithBinary creates a runner bound to a specific executable.
func NewWithBinary(binary string, logger *zap.Logger) *Runner {
	return &Runner{binary: binary, logger: logger}
}

// MigrateRepo runs one repository migration end to end. The outcome is
// always populated; process failures become failed outcomes rather
// than errors so one bad repo never aborts a batch.
func (r *Runner) MigrateRepo(ctx context.Context, job migration.Job) migration.Outcome {
	guard := timeout.New[migration.Outcome](timeout.Config{
		DefaultTimeout: migrationTimeout,
	})

	outcome, err := guard.Execute(ctx, migrationTimeout, func(ctx context.Context) (migration.Outcome, error) {
		return r.run(ctx, job), nil
	})
	if err != nil {
		return migration.Outcome{Message: truncate(err.Error())}
	}
	return outcome
}

func (r *Runner) run(ctx context.Context, job migration.Job) migration.Outcome {
	// The argument list carries the source PAT; it must never be logged.
	args := buildArgs(job)

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Env = append(os.Environ(), "GH_PAT="+job.TargetToken)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Info("starting repository migration",
		zap.String("repo", job.SourceRepo),
		zap.String("project", job.SourceProject),
		zap.String("target_org", job.TargetOrg))

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = strings.TrimSpace(stdout.String())
		}
		if message == "" {
			message = "Unknown error"
		}

		r.logger.Warn("repository migration failed",
			zap.String("repo", job.SourceRepo),
			zap.String("message", truncate(message)))
		return migration.Outcome{Message: truncate(message)}
	}

	r.logger.Info("repository migration succeeded", zap.String("repo", job.SourceRepo))
	return migration.Outcome{Succeeded: true, Message: "Success"}
}

// buildArgs assembles the ado2gh migrate-repo invocation. Private is
// the importer default, so the visibility flag is only passed for
// non-default values.
func buildArgs(job migration.Job) []string {
	args := []string{
		"ado2gh", "migrate-repo",
		"--ado-org", job.SourceOrg,
		"--ado-team-project", job.SourceProject,
		"--ado-repo", job.SourceRepo,
		"--github-org", job.TargetOrg,
		"--github-repo", job.TargetRepo,
		"--ado-pat", job.SourcePAT,
	}
	if job.Visibility != "" && job.Visibility != "private" {
		args = append(args, "--target-repo-visibility", job.Visibility)
	}
	return args
}

// CheckInstalled verifies the gh binary is on PATH and carries the
// ado2gh extension. Used by preflight checks before any migration.
func (r *Runner) CheckInstalled(ctx context.Context) error {
	if _, err := exec.LookPath(r.binary); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", r.binary, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binary, "extension", "list")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to list gh extensions: %w", err)
	}
	if !strings.Contains(out.String(), "ado2gh") {
		return errors.New("gh extension ado2gh is not installed (run 'gh extension install github/gh-ado2gh')")
	}
	return nil
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) > messageLimit {
		return string(runes[:messageLimit])
	}
	return s
}
