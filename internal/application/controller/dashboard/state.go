package dashboard

import "fmt"

// SectionPhase is the phase of the last toggled status section
type SectionPhase int

const (
	SectionNone SectionPhase = iota
	SectionOpen
	SectionClosed
)

// SectionState tracks the last toggled section. Only one index is
// tracked: opening another section leaves the previous one rendered.
type SectionState struct {
	Phase SectionPhase
	Index int
}

// Toggle returns the state after a click on section index. Re-clicking
// the open section closes it; any other click opens index.
func (s SectionState) Toggle(index int) SectionState {
	if s.Phase == SectionOpen && s.Index == index {
		return SectionState{Phase: SectionClosed, Index: index}
	}
	return SectionState{Phase: SectionOpen, Index: index}
}

// IsOpen reports whether index is the tracked open section
func (s SectionState) IsOpen(index int) bool {
	return s.Phase == SectionOpen && s.Index == index
}

func (s SectionState) String() string {
	switch s.Phase {
	case SectionOpen:
		return fmt.Sprintf("open(%d)", s.Index)
	case SectionClosed:
		return fmt.Sprintf("closed(%d)", s.Index)
	default:
		return "none"
	}
}

// PanelPhase is the phase of the review panel
type PanelPhase int

const (
	PanelNone PanelPhase = iota
	PanelExpanded
	PanelCollapsed
)

// PanelState tracks which bill the review panel shows
type PanelState struct {
	Phase  PanelPhase
	BillID string
}

// Select returns the state after a click on the card of billID. Switching
// bills always expands; re-clicking the same bill alternates.
func (p PanelState) Select(billID string) PanelState {
	if p.Phase == PanelExpanded && p.BillID == billID {
		return PanelState{Phase: PanelCollapsed, BillID: billID}
	}
	return PanelState{Phase: PanelExpanded, BillID: billID}
}

// Expanded reports whether the panel shows a bill form
func (p PanelState) Expanded() bool {
	return p.Phase == PanelExpanded
}

func (p PanelState) String() string {
	switch p.Phase {
	case PanelExpanded:
		return "expanded(" + p.BillID + ")"
	case PanelCollapsed:
		return "collapsed(" + p.BillID + ")"
	default:
		return "none"
	}
}
