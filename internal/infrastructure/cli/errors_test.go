package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/adoready/internal/infrastructure/ado"
	"github.com/felixgeelhaar/adoready/pkg/application"
	"github.com/felixgeelhaar/adoready/pkg/storage"
)

func TestCLIError(t *testing.T) {
	t.Run("Error with cause", func(t *testing.T) {
		cause := errors.New("root cause")
		e := NewCLIError("something failed", "try this", cause)
		if e.Error() != "something failed: root cause" {
			t.Fatalf("unexpected: %s", e.Error())
		}
		if e.ExitCode != 1 {
			t.Fatalf("expected exit code 1, got %d", e.ExitCode)
		}
	})

	t.Run("Error without cause", func(t *testing.T) {
		e := NewCLIError("something failed", "try this", nil)
		if e.Error() != "something failed" {
			t.Fatalf("unexpected: %s", e.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root")
		e := NewCLIError("msg", "", cause)
		if !errors.Is(e, cause) {
			t.Fatal("errors.Is should match wrapped cause")
		}
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantHint string
		wantCLI  bool
	}{
		{
			name: "nil returns nil",
			err:  nil,
		},
		{
			name:     "ErrNotConfigured",
			err:      application.ErrNotConfigured,
			wantMsg:  "not configured",
			wantHint: "Run 'adoready configure' to set up your Azure DevOps connection",
			wantCLI:  true,
		},
		{
			name:     "ErrConfigNotFound maps like unconfigured",
			err:      storage.ErrConfigNotFound,
			wantMsg:  "not configured",
			wantHint: "Run 'adoready configure' to set up your Azure DevOps connection",
			wantCLI:  true,
		},
		{
			name:     "ErrScanInProgress",
			err:      application.ErrScanInProgress,
			wantMsg:  "a scan is already running",
			wantHint: "Wait for it to finish, then retry",
			wantCLI:  true,
		},
		{
			name:     "ErrMigrationInProgress",
			err:      application.ErrMigrationInProgress,
			wantMsg:  "a migration is already running",
			wantHint: "Wait for it to finish, then retry",
			wantCLI:  true,
		},
		{
			name:     "ErrNoScanResults",
			err:      application.ErrNoScanResults,
			wantMsg:  "no scan results found",
			wantHint: "Run 'adoready scan' first",
			wantCLI:  true,
		},
		{
			name:     "ErrCacheNotFound",
			err:      storage.ErrCacheNotFound,
			wantMsg:  "no scan results found",
			wantHint: "Run 'adoready scan' first",
			wantCLI:  true,
		},
		{
			name:     "ErrCacheInvalid",
			err:      storage.ErrCacheInvalid,
			wantMsg:  "scan cache is unreadable",
			wantHint: "Run 'adoready scan' to rebuild it",
			wantCLI:  true,
		},
		{
			name:     "ErrAuthFailed",
			err:      ado.ErrAuthFailed,
			wantMsg:  "Azure DevOps rejected the credentials",
			wantHint: "Check the PAT with 'adoready configure', then run 'adoready test-connection'",
			wantCLI:  true,
		},
		{
			name:     "ErrInvalidRequest",
			err:      application.ErrInvalidRequest,
			wantMsg:  "invalid request",
			wantHint: "Check the flags and retry; see 'adoready migrate --help'",
			wantCLI:  true,
		},
		{
			name:     "wrapped sentinel still maps",
			err:      fmt.Errorf("load config: %w", storage.ErrConfigNotFound),
			wantMsg:  "not configured",
			wantHint: "Run 'adoready configure' to set up your Azure DevOps connection",
			wantCLI:  true,
		},
		{
			name: "unmapped error passes through",
			err:  errors.New("something else"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MapError(tt.err)
			if tt.err == nil {
				if result != nil {
					t.Fatal("expected nil")
				}
				return
			}
			if !tt.wantCLI {
				if result != tt.err {
					t.Fatal("unmapped error should pass through unchanged")
				}
				return
			}
			var cliErr *CLIError
			if !errors.As(result, &cliErr) {
				t.Fatalf("expected CLIError, got %T", result)
			}
			if cliErr.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", cliErr.Message, tt.wantMsg)
			}
			if cliErr.Hint != tt.wantHint {
				t.Fatalf("hint = %q, want %q", cliErr.Hint, tt.wantHint)
			}
			// Verify original error is preserved
			if !errors.Is(cliErr, tt.err) {
				t.Fatal("CLIError should wrap original error")
			}
		})
	}
}
