package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a review decision is not allowed
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not valid
	ErrInvalidState = errors.New("invalid state")
)
