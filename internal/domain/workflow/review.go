package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/garyjia/billed/internal/domain/entity"
)

// reviewBuilder is built on first use
var reviewBuilder = sync.OnceValue(newReviewBuilder)

func newReviewBuilder() StateMachineBuilder {
	b := NewBuilder()
	b.Configure(StatePending).
		Permit(TriggerAccept, StateAccepted).
		Permit(TriggerRefuse, StateRefused)
	// accepted and refused are terminal: no transitions configured
	b.Configure(StateAccepted)
	b.Configure(StateRefused)
	return b
}

// NewReviewMachine returns a state machine positioned at the bill's status
func NewReviewMachine(status entity.Status) (StateMachine, error) {
	state := State(status)
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, status)
	}
	return reviewBuilder().Build(state), nil
}

// decisionTriggers maps a decision status to the trigger applying it, in
// the order the review form offers them
var decisionTriggers = []struct {
	status  entity.Status
	trigger Trigger
}{
	{entity.StatusRefused, TriggerRefuse},
	{entity.StatusAccepted, TriggerAccept},
}

// Decide applies an administrator decision to a bill status and returns
// the resulting status
func Decide(ctx context.Context, status entity.Status, decision entity.Status) (entity.Status, error) {
	trigger, ok := triggerFor(decision)
	if !ok {
		return status, fmt.Errorf("%w: %q is not a decision", ErrInvalidTransition, decision)
	}

	machine, err := NewReviewMachine(status)
	if err != nil {
		return status, err
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		return status, err
	}
	return entity.Status(machine.State()), nil
}

// Decisions lists the decisions still open on a bill with the given
// status. Unknown statuses allow none.
func Decisions(status entity.Status) []entity.Status {
	machine, err := NewReviewMachine(status)
	if err != nil {
		return nil
	}
	var out []entity.Status
	for _, d := range decisionTriggers {
		if machine.CanFire(d.trigger) {
			out = append(out, d.status)
		}
	}
	return out
}

// IsReviewed reports whether an administrator already decided on the bill
func IsReviewed(status entity.Status) bool {
	return State(status).IsTerminal()
}

func triggerFor(decision entity.Status) (Trigger, bool) {
	for _, d := range decisionTriggers {
		if d.status == decision {
			return d.trigger, true
		}
	}
	return "", false
}
