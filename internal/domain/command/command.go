// Package command defines the typed messages emitted by dashboard controls.
package command

import (
	"fmt"
	"time"

	"github.com/garyjia/billed/internal/interfaces/ui"
)

// Command is a message emitted by a control and consumed by one handler
type Command struct {
	Type      Type      `json:"type"`
	Section   int       `json:"section,omitempty"`
	BillID    string    `json:"bill_id,omitempty"`
	Event     *ui.Event `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// OpenSection toggles the status section with the given index (1..3)
func OpenSection(index int) *Command {
	return newCommand(TypeOpenSection, index, "")
}

// EditBill selects a bill in the review panel
func EditBill(billID string) *Command {
	return newCommand(TypeEditBill, 0, billID)
}

// Accept submits an acceptance for a bill
func Accept(billID string) *Command {
	return newCommand(TypeAccept, 0, billID)
}

// Refuse submits a refusal for a bill
func Refuse(billID string) *Command {
	return newCommand(TypeRefuse, 0, billID)
}

// ViewProof opens the receipt preview of the bill being edited
func ViewProof() *Command {
	return newCommand(TypeViewProof, 0, "")
}

// WithEvent returns a copy of the command carrying the originating UI event
func (c *Command) WithEvent(ev *ui.Event) *Command {
	cp := *c
	cp.Event = ev
	return &cp
}

// UIEvent returns the originating event, or a fresh one for programmatic commands
func (c *Command) UIEvent() *ui.Event {
	if c.Event != nil {
		return c.Event
	}
	return ui.NewEvent("")
}

// Validate checks that the command carries the fields its type requires
func (c *Command) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("unknown command type %q", c.Type)
	}
	switch c.Type {
	case TypeOpenSection:
		if c.Section < 1 || c.Section > 3 {
			return fmt.Errorf("section index out of range: %d", c.Section)
		}
	case TypeEditBill, TypeAccept, TypeRefuse:
		if c.BillID == "" {
			return fmt.Errorf("%s requires a bill id", c.Type)
		}
	}
	return nil
}

func newCommand(t Type, section int, billID string) *Command {
	return &Command{
		Type:      t,
		Section:   section,
		BillID:    billID,
		Timestamp: time.Now(),
	}
}
