package playback

import "fmt"

type IntentKind int

const (
	// IntentToggleMute comes from the mute icon on a slot.
	IntentToggleMute IntentKind = iota
	// IntentSelect comes from a tap on the video surface.
	IntentSelect
)

func (k IntentKind) String() string {
	switch k {
	case IntentToggleMute:
		return "toggle_mute"
	case IntentSelect:
		return "select"
	default:
		return "unknown"
	}
}

type Intent struct {
	Kind IntentKind
	Slot int
}

type Op string

const (
	OpSeekToStart Op = "seek"
	OpUnmute      Op = "unmute"
	OpMute        Op = "mute"
	OpPlay        Op = "play"
	OpPause       Op = "pause"
	OpSetSource   Op = "set-source"
	OpLoad        Op = "load"
)

// Command is one imperative call to the media element bound to Slot.
type Command struct {
	Slot   int    `json:"slot"`
	Op     Op     `json:"op"`
	Source string `json:"source,omitempty"`
}

// Reduce computes the next state and the media commands for an intent. It does
// not touch s; the returned state is a fresh copy.
func Reduce(s State, in Intent) (State, []Command, error) {
	if !s.layout.Valid(in.Slot) {
		return s, nil, fmt.Errorf("%s slot %d of %d: %w", in.Kind, in.Slot, s.Slots(), ErrSlotOutOfRange)
	}

	unmute := false
	switch in.Kind {
	case IntentToggleMute:
		unmute = s.muted[in.Slot]
	case IntentSelect:
		unmute = s.active != in.Slot
	default:
		return s, nil, fmt.Errorf("unknown intent %d", in.Kind)
	}

	if unmute {
		return activate(s, in.Slot)
	}
	return deactivate(s, in.Slot)
}

func activate(s State, slot int) (State, []Command, error) {
	next := s.clone()
	cmds := make([]Command, 0, len(next.muted)+2)
	cmds = append(cmds,
		Command{Slot: slot, Op: OpSeekToStart},
		Command{Slot: slot, Op: OpUnmute},
		Command{Slot: slot, Op: OpPlay},
	)
	for i := range next.muted {
		if i == slot {
			next.muted[i] = false
			continue
		}
		next.muted[i] = true
		cmds = append(cmds, Command{Slot: i, Op: OpMute})
	}
	next.active = slot
	return next, cmds, nil
}

func deactivate(s State, slot int) (State, []Command, error) {
	dup, err := s.layout.Duplicate(slot)
	if err != nil {
		return s, nil, err
	}
	next := s.clone()
	next.muted[slot] = true
	next.muted[dup] = true
	next.active = noActive
	return next, []Command{
		{Slot: slot, Op: OpMute},
		{Slot: dup, Op: OpMute},
	}, nil
}
