package ui

import "context"

// Event types dispatched through a Document
const (
	EventClick  = "click"
	EventSubmit = "submit"
	EventChange = "change"
)

// File is an uploaded file attached to a change event
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Event is a UI event travelling from its target element up to the body
type Event struct {
	Type            string
	TargetID        string
	CurrentTargetID string
	// Value carries the raw input value of change events (e.g. C:\fakepath\a.jpg)
	Value string
	Files []File

	defaultPrevented   bool
	propagationStopped bool
}

// NewEvent creates a click event targeting the given element id
func NewEvent(targetID string) *Event {
	return &Event{Type: EventClick, TargetID: targetID, CurrentTargetID: targetID}
}

// PreventDefault marks the event's default action as cancelled
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation prevents handlers on ancestor elements from running
func (e *Event) StopPropagation() {
	e.propagationStopped = true
}

// PropagationStopped reports whether StopPropagation was called
func (e *Event) PropagationStopped() bool {
	return e.propagationStopped
}

// Handler reacts to an event
type Handler func(ctx context.Context, ev *Event) error
