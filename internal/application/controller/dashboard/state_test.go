package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionStateToggle(t *testing.T) {
	tests := []struct {
		name  string
		from  SectionState
		index int
		want  SectionState
	}{
		{"none opens", SectionState{}, 1, SectionState{SectionOpen, 1}},
		{"same open closes", SectionState{SectionOpen, 1}, 1, SectionState{SectionClosed, 1}},
		{"closed reopens", SectionState{SectionClosed, 1}, 1, SectionState{SectionOpen, 1}},
		{"other index opens", SectionState{SectionOpen, 1}, 2, SectionState{SectionOpen, 2}},
		{"other index after close opens", SectionState{SectionClosed, 3}, 2, SectionState{SectionOpen, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.Toggle(tt.index))
		})
	}
}

func TestSectionStateAlternates(t *testing.T) {
	var s SectionState
	for i := 0; i < 4; i++ {
		s = s.Toggle(1)
		assert.Equal(t, i%2 == 0, s.IsOpen(1), "toggle %d", i+1)
	}
	assert.Equal(t, "closed(1)", s.String())
}

func TestPanelStateSelect(t *testing.T) {
	tests := []struct {
		name string
		from PanelState
		id   string
		want PanelState
	}{
		{"none expands", PanelState{}, "a", PanelState{PanelExpanded, "a"}},
		{"same expanded collapses", PanelState{PanelExpanded, "a"}, "a", PanelState{PanelCollapsed, "a"}},
		{"same collapsed expands", PanelState{PanelCollapsed, "a"}, "a", PanelState{PanelExpanded, "a"}},
		{"switch from expanded expands", PanelState{PanelExpanded, "a"}, "b", PanelState{PanelExpanded, "b"}},
		{"switch from collapsed expands", PanelState{PanelCollapsed, "a"}, "b", PanelState{PanelExpanded, "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.Select(tt.id))
		})
	}
	assert.Equal(t, "none", PanelState{}.String())
}
