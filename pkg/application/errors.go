package application

import "errors"

// Operational sentinel errors surfaced by the scan and migration
// services. The HTTP and CLI layers map these to user-facing responses.
var (
	// ErrNotConfigured means no Azure DevOps connection has been saved yet.
	ErrNotConfigured = errors.New("not configured")

	// ErrScanInProgress means a scan already holds the scan gate.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrMigrationInProgress means a batch already holds the migration gate.
	ErrMigrationInProgress = errors.New("migration already in progress")

	// ErrNoScanResults means no scan has completed in this process and no
	// cached scan could be loaded.
	ErrNoScanResults = errors.New("no scan results available")

	// ErrInvalidRequest wraps request validation failures such as a
	// malformed target organization name.
	ErrInvalidRequest = errors.New("invalid request")
)
