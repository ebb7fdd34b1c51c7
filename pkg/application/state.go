package application

import (
	"sync"
	"sync/atomic"

	"github.com/felixgeelhaar/adoready/pkg/domain/migration"
)

// Slot is a versioned value holder for shared operational state.
// Writers replace the whole value; readers get the current snapshot
// plus its version. Stored values are treated as immutable: writers
// must build a fresh value (including fresh maps) for every Set.
type Slot[T any] struct {
	mu      sync.RWMutex
	version uint64
	value   T
}

// Get returns the current snapshot and its version.
func (s *Slot[T]) Get() (T, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.version
}

// Value returns the current snapshot, discarding the version.
func (s *Slot[T]) Value() T {
	v, _ := s.Get()
	return v
}

// Set replaces the snapshot and returns the new version.
func (s *Slot[T]) Set(v T) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	s.value = v
	return s.version
}

// Gate is a single-flight claim on a long-running operation. Acquire
// is an atomic compare-and-set, so at most one owner exists even under
// true parallelism.
type Gate struct {
	claimed atomic.Bool
}

// TryAcquire claims the gate. It returns false when another owner
// already holds it.
func (g *Gate) TryAcquire() bool {
	return g.claimed.CompareAndSwap(false, true)
}

// Release frees the gate for the next owner.
func (g *Gate) Release() {
	g.claimed.Store(false)
}

// InProgress reports whether the gate is currently held.
func (g *Gate) InProgress() bool {
	return g.claimed.Load()
}

// Scan lifecycle phases as they appear in status snapshots and events.
const (
	ScanIdle      = "idle"
	ScanStarting  = "starting"
	ScanScanning  = "scanning"
	ScanCompleted = "completed"
	ScanFailed    = "failed"
)

// ScanStatus is the reportable state of the current or last scan.
type ScanStatus struct {
	Status          string `json:"status"`
	Progress        int    `json:"progress"`
	CurrentProject  string `json:"current_project,omitempty"`
	ProjectsScanned int    `json:"projects_scanned"`
	TotalProjects   int    `json:"total_projects"`
	Error           string `json:"error,omitempty"`
}

// Migration lifecycle phases for the batch as a whole.
const (
	MigrationIdle       = "idle"
	MigrationStarting   = "starting"
	MigrationInProgress = "in_progress"
	MigrationCompleted  = "completed"
	MigrationFailed     = "failed"
)

// MigrationStatus is the reportable state of the current or last
// migration batch. Repos is keyed by repository name.
type MigrationStatus struct {
	Status string                    `json:"status"`
	Repos  map[string]migration.Item `json:"repos"`
	Error  string                    `json:"error,omitempty"`
}
