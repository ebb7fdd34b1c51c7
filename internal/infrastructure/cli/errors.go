package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/adoready/internal/infrastructure/ado"
	"github.com/felixgeelhaar/adoready/pkg/application"
	"github.com/felixgeelhaar/adoready/pkg/storage"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, application.ErrNotConfigured), errors.Is(err, storage.ErrConfigNotFound):
		return NewCLIError("not configured", "Run 'adoready configure' to set up your Azure DevOps connection", err)
	case errors.Is(err, application.ErrScanInProgress):
		return NewCLIError("a scan is already running", "Wait for it to finish, then retry", err)
	case errors.Is(err, application.ErrMigrationInProgress):
		return NewCLIError("a migration is already running", "Wait for it to finish, then retry", err)
	case errors.Is(err, application.ErrNoScanResults), errors.Is(err, storage.ErrCacheNotFound):
		return NewCLIError("no scan results found", "Run 'adoready scan' first", err)
	case errors.Is(err, storage.ErrCacheInvalid):
		return NewCLIError("scan cache is unreadable", "Run 'adoready scan' to rebuild it", err)
	case errors.Is(err, ado.ErrAuthFailed):
		return NewCLIError("Azure DevOps rejected the credentials", "Check the PAT with 'adoready configure', then run 'adoready test-connection'", err)
	case errors.Is(err, application.ErrInvalidRequest):
		return NewCLIError("invalid request", "Check the flags and retry; see 'adoready migrate --help'", err)
	}

	return err
}
