// Package migration holds the per-repository migration model: item
// statuses, their transition rules, and the runner contract that
// executes a single repository move.
package migration

import "fmt"

// Status is the lifecycle state of one repository in a migration batch.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// validTransitions defines the allowed state transitions and their events.
// Map: currentStatus -> event -> targetStatus
var validTransitions = map[Status]map[string]Status{
	StatusPending: {
		"start": StatusInProgress,
		// A repo can fail before it starts, e.g. when it is missing
		// from the last scan or no target credentials exist.
		"fail": StatusFailed,
	},
	StatusInProgress: {
		"complete": StatusCompleted,
		"fail":     StatusFailed,
	},
	StatusCompleted: {},
	StatusFailed:    {},
}

// AllStatuses returns all valid item statuses.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusInProgress,
		StatusCompleted,
		StatusFailed,
	}
}

// IsValid returns true if the status is a valid item status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true once the item can no longer change state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo returns true if a transition from the current status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	transitions, ok := validTransitions[s]
	if !ok {
		return false
	}

	for _, t := range transitions {
		if t == target {
			return true
		}
	}
	return false
}

// CanTransitionWith returns true if the given event can trigger a transition from this status.
func (s Status) CanTransitionWith(event string) bool {
	transitions, ok := validTransitions[s]
	if !ok {
		return false
	}

	_, ok = transitions[event]
	return ok
}

// TransitionWith returns the target status for a given event, or an error if not allowed.
func (s Status) TransitionWith(event string) (Status, error) {
	transitions, ok := validTransitions[s]
	if !ok {
		return s, fmt.Errorf("no transitions defined for status: %s", s)
	}

	target, ok := transitions[event]
	if !ok {
		return s, fmt.Errorf("event '%s' not allowed from status '%s'", event, s)
	}

	return target, nil
}

// ValidEvents returns all valid events that can be triggered from this status.
func (s Status) ValidEvents() []string {
	transitions, ok := validTransitions[s]
	if !ok {
		return nil
	}

	var events []string
	for event := range transitions {
		events = append(events, event)
	}
	return events
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid migration status: %s", s)
	}
	return status, nil
}

// Item is the reportable state of one repository inside a batch.
type Item struct {
	Repo     string `json:"repo"`
	Status   Status `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// Request describes a migration batch as submitted by a caller.
type Request struct {
	Repos      []string `json:"repos"`
	TargetOrg  string   `json:"target_org"`
	Visibility string   `json:"visibility"`
}
