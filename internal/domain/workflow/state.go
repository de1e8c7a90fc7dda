package workflow

// State represents a bill review state
type State string

const (
	StatePending  State = "pending"
	StateAccepted State = "accepted"
	StateRefused  State = "refused"
)

// IsTerminal returns true once a bill can no longer be reviewed
func (s State) IsTerminal() bool {
	switch s {
	case StateAccepted, StateRefused:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid review state
func (s State) IsValid() bool {
	switch s {
	case StatePending, StateAccepted, StateRefused:
		return true
	default:
		return false
	}
}
