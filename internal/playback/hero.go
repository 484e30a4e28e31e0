package playback

import (
	"context"
	"sync"
)

// heroSlot is the slot index used in commands for the single hero element.
const heroSlot = 0

type HeroState int

const (
	HeroLowResMuted HeroState = iota
	HeroHighResPlaying
	HeroHighResMuted
)

func (s HeroState) String() string {
	switch s {
	case HeroLowResMuted:
		return "low_res_muted"
	case HeroHighResPlaying:
		return "high_res_playing"
	case HeroHighResMuted:
		return "high_res_muted"
	default:
		return "unknown"
	}
}

func (s HeroState) Muted() bool {
	return s != HeroHighResPlaying
}

type HeroSources struct {
	LowRes  string `json:"lowRes" yaml:"low_res"`
	HighRes string `json:"highRes" yaml:"high_res"`
}

// ReduceHero returns the next hero state for a tap. The first tap upgrades to
// the high resolution source; the upgrade is never undone.
func ReduceHero(s HeroState, src HeroSources) (HeroState, []Command) {
	switch s {
	case HeroLowResMuted:
		return HeroHighResPlaying, []Command{
			{Slot: heroSlot, Op: OpSetSource, Source: src.HighRes},
			{Slot: heroSlot, Op: OpLoad},
			{Slot: heroSlot, Op: OpSeekToStart},
			{Slot: heroSlot, Op: OpUnmute},
			{Slot: heroSlot, Op: OpPlay},
		}
	case HeroHighResPlaying:
		return HeroHighResMuted, []Command{
			{Slot: heroSlot, Op: OpMute},
		}
	default:
		return HeroHighResPlaying, []Command{
			{Slot: heroSlot, Op: OpSeekToStart},
			{Slot: heroSlot, Op: OpUnmute},
			{Slot: heroSlot, Op: OpPlay},
		}
	}
}

type HeroResult struct {
	State    HeroState
	Commands []Command
	Failed   []Command
}

type HeroController struct {
	mu      sync.Mutex
	sources HeroSources
	media   HeroMedia
	state   HeroState
}

func NewHeroController(src HeroSources, media HeroMedia) *HeroController {
	return &HeroController{sources: src, media: media, state: HeroLowResMuted}
}

// Mount starts the low resolution preview muted and looping.
func (h *HeroController) Mount(ctx context.Context) []Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Apply(ctx, h.controllers(), []Command{
		{Slot: heroSlot, Op: OpSetSource, Source: h.sources.LowRes},
		{Slot: heroSlot, Op: OpMute},
		{Slot: heroSlot, Op: OpPlay},
	})
}

func (h *HeroController) Tap(ctx context.Context) HeroResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	next, cmds := ReduceHero(h.state, h.sources)
	h.state = next
	failed := Apply(ctx, h.controllers(), cmds)
	return HeroResult{State: next, Commands: cmds, Failed: failed}
}

func (h *HeroController) State() HeroState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *HeroController) Sources() HeroSources {
	return h.sources
}

func (h *HeroController) controllers() []MediaController {
	return []MediaController{h.media}
}
