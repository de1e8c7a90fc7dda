package workflow

// Trigger represents an administrator decision on a bill
type Trigger string

const (
	TriggerAccept Trigger = "ACCEPT"
	TriggerRefuse Trigger = "REFUSE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
