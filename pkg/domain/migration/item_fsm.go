package migration

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain as untyped string constants for statekit.StateID compatibility.
// Values are kept in sync with the Status constants in item.go.
const (
	StatePending    = "pending"
	StateInProgress = "in_progress"
	StateCompleted  = "completed"
	StateFailed     = "failed"
)

// init validates at startup that FSM state constants match Status values.
func init() {
	stateMap := map[string]Status{
		StatePending:    StatusPending,
		StateInProgress: StatusInProgress,
		StateCompleted:  StatusCompleted,
		StateFailed:     StatusFailed,
	}

	for fsmState, status := range stateMap {
		if fsmState != string(status) {
			panic(fmt.Sprintf("FSM state %q does not match Status %q - constants are out of sync", fsmState, status))
		}
	}
}

// ItemContext carries state data for one repository's machine.
type ItemContext struct {
	Repo string
}

// ItemStateMachine enforces the per-repository migration lifecycle.
type ItemStateMachine struct {
	interpreter *statekit.Interpreter[ItemContext]
}

func NewItemStateMachine(repo string) (*ItemStateMachine, error) {
	builder := statekit.NewMachine[ItemContext]("migration-item").
		WithInitial(statekit.StateID(StatePending)).
		WithContext(ItemContext{Repo: repo})

	builder.State(StatePending).
		On("start").Target(StateInProgress).
		On("fail").Target(StateFailed).
		Done()

	builder.State(StateInProgress).
		On("complete").Target(StateCompleted).
		On("fail").Target(StateFailed).
		Done()

	builder.State(StateCompleted).Done()
	builder.State(StateFailed).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &ItemStateMachine{interpreter: interpreter}, nil
}

// Transition attempts to move the item to a new state.
func (sm *ItemStateMachine) Transition(event string) error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.Current()

	if before != after {
		return nil
	}

	return fmt.Errorf("the action '%s' is not allowed while the item is in the '%s' state", event, before)
}

func (sm *ItemStateMachine) Current() string {
	return string(sm.interpreter.State().Value)
}

// CurrentStatus returns the current state as a Status value object.
func (sm *ItemStateMachine) CurrentStatus() Status {
	return Status(sm.Current())
}

// CanTransition checks if the given event is valid for the current state.
// This delegates to the Status value object for consistency.
func (sm *ItemStateMachine) CanTransition(event string) bool {
	return sm.CurrentStatus().CanTransitionWith(event)
}

// IsTerminal returns true once the item reached completed or failed.
func (sm *ItemStateMachine) IsTerminal() bool {
	return sm.CurrentStatus().IsTerminal()
}
