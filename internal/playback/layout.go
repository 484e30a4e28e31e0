package playback

import (
	"errors"
	"fmt"
)

var ErrSlotOutOfRange = errors.New("slot out of range")

// VideoDescriptor is one logical video supplied by the page. It is never mutated.
type VideoDescriptor struct {
	URL       string `json:"url" yaml:"url"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
}

// Layout describes the duplicated sequence rendered for a seamless scrolling loop:
// every logical video appears twice, so slot s shows logical video s mod N.
type Layout struct {
	Videos int
}

func (l Layout) Slots() int {
	if l.Videos <= 0 {
		return 0
	}
	return 2 * l.Videos
}

func (l Layout) Valid(slot int) bool {
	return slot >= 0 && slot < l.Slots()
}

func (l Layout) LogicalIndex(slot int) (int, error) {
	if !l.Valid(slot) {
		return 0, fmt.Errorf("logical index of slot %d: %w", slot, ErrSlotOutOfRange)
	}
	return slot % l.Videos, nil
}

// Duplicate returns the other slot showing the same logical video.
func (l Layout) Duplicate(slot int) (int, error) {
	if !l.Valid(slot) {
		return 0, fmt.Errorf("duplicate of slot %d: %w", slot, ErrSlotOutOfRange)
	}
	if slot < l.Videos {
		return slot + l.Videos, nil
	}
	return slot - l.Videos, nil
}
