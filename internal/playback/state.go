package playback

const noActive = -1

// State is the mute/selection state of one mounted carousel.
// At most one slot is unmuted and it is always the active slot.
type State struct {
	layout Layout
	muted  []bool
	active int
}

func NewState(videos int) State {
	layout := Layout{Videos: videos}
	muted := make([]bool, layout.Slots())
	for i := range muted {
		muted[i] = true
	}
	return State{layout: layout, muted: muted, active: noActive}
}

func (s State) Layout() Layout {
	return s.layout
}

func (s State) Slots() int {
	return len(s.muted)
}

func (s State) IsMuted(slot int) bool {
	if slot < 0 || slot >= len(s.muted) {
		return true
	}
	return s.muted[slot]
}

// IsActive reports whether slot itself is the active one. The duplicate of the
// active slot is never reported active.
func (s State) IsActive(slot int) bool {
	return s.active != noActive && s.active == slot
}

func (s State) Active() (int, bool) {
	if s.active == noActive {
		return 0, false
	}
	return s.active, true
}

func (s State) clone() State {
	muted := make([]bool, len(s.muted))
	copy(muted, s.muted)
	return State{layout: s.layout, muted: muted, active: s.active}
}

// SlotView is the per-slot render state.
type SlotView struct {
	Slot         int             `json:"slot"`
	LogicalIndex int             `json:"logicalIndex"`
	Video        VideoDescriptor `json:"video"`
	Muted        bool            `json:"isMuted"`
	Active       bool            `json:"isActive"`
}

// Views pairs the state with the descriptors it was built for.
func (s State) Views(videos []VideoDescriptor) []SlotView {
	views := make([]SlotView, 0, len(s.muted))
	for slot := range s.muted {
		logical, err := s.layout.LogicalIndex(slot)
		if err != nil || logical >= len(videos) {
			continue
		}
		views = append(views, SlotView{
			Slot:         slot,
			LogicalIndex: logical,
			Video:        videos[logical],
			Muted:        s.muted[slot],
			Active:       s.IsActive(slot),
		})
	}
	return views
}
