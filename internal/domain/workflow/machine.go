package workflow

import "context"

// StateMachine tracks the review state of one bill and validates decisions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is configured for the current state
	CanFire(trigger Trigger) bool

	// Fire applies the trigger, moving to the target state if allowed
	Fire(ctx context.Context, trigger Trigger) error
}
