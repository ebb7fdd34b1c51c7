// Package progress defines the ephemeral progress events published
// while a scan or migration runs, and the hub that fans them out to
// subscribers. Events are notifications, not durable state; consumers
// that need the authoritative picture read the status snapshots.
package progress

import (
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/adoready/pkg/domain/migration"
)

// EventKind discriminates the two progress streams.
type EventKind string

const (
	KindScan      EventKind = "scan"
	KindMigration EventKind = "migration"
)

// Event is the base interface for all progress events.
type Event interface {
	Kind() EventKind
}

// ScanEvent reports incremental scan progress. Progress is a
// percentage in [0,100]; ProjectsScanned counts projects already
// finished when the event was published.
type ScanEvent struct {
	ID              string    `json:"id"`
	Type            EventKind `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	Status          string    `json:"status"`
	Progress        int       `json:"progress"`
	CurrentProject  string    `json:"current_project,omitempty"`
	ProjectsScanned int       `json:"projects_scanned"`
	TotalProjects   int       `json:"total_projects"`
	Error           string    `json:"error,omitempty"`
}

// Kind implements Event.
func (e ScanEvent) Kind() EventKind { return KindScan }

// NewScanEvent returns a scan event stamped with a fresh ID and UTC
// timestamp. Callers fill the remaining fields before publishing.
func NewScanEvent(status string, progress int) ScanEvent {
	return ScanEvent{
		ID:        uuid.New().String(),
		Type:      KindScan,
		Timestamp: time.Now().UTC(),
		Status:    status,
		Progress:  progress,
	}
}

// MigrationEvent reports the state of a whole migration batch. Repos
// is a snapshot keyed by repository name; publishers hand over a fresh
// map per event so subscribers never observe later mutation.
type MigrationEvent struct {
	ID        string                    `json:"id"`
	Type      EventKind                 `json:"type"`
	Timestamp time.Time                 `json:"timestamp"`
	Status    string                    `json:"status"`
	Repos     map[string]migration.Item `json:"repos"`
	Error     string                    `json:"error,omitempty"`
}

// Kind implements Event.
func (e MigrationEvent) Kind() EventKind { return KindMigration }

// NewMigrationEvent returns a migration event stamped with a fresh ID
// and UTC timestamp.
func NewMigrationEvent(status string, repos map[string]migration.Item) MigrationEvent {
	return MigrationEvent{
		ID:        uuid.New().String(),
		Type:      KindMigration,
		Timestamp: time.Now().UTC(),
		Status:    status,
		Repos:     repos,
	}
}
