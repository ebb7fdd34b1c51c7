package migration

import "context"

// Job carries everything needed to move one repository from Azure
// DevOps to GitHub. Credentials travel here and nowhere else; they
// must never appear in logs or progress messages.
type Job struct {
	SourceOrg     string
	SourceProject string
	SourceRepo    string
	TargetOrg     string
	TargetRepo    string
	Visibility    string
	SourcePAT     string
	TargetToken   string
}

// Outcome is the terminal result of one migration job. Message is
// already safe to surface to users.
type Outcome struct {
	Succeeded bool
	Message   string
}

// Runner executes a single repository migration. Implementations block
// until the job finishes or ctx is done.
type Runner interface {
	MigrateRepo(ctx context.Context, job Job) Outcome
}
