package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrControllerCount = errors.New("controller count does not match slot count")

// Result is what one intent produced: the state after the transition, the
// commands that were issued and those of them that failed.
type Result struct {
	Intent   Intent
	State    State
	Commands []Command
	Failed   []Command
}

// Coordinator owns the playback state of one mounted carousel and drives the
// media controllers of its 2N slots. Intents are serialized; the mute flags are
// the source of truth regardless of how media calls resolve.
type Coordinator struct {
	mu          sync.Mutex
	videos      []VideoDescriptor
	controllers []MediaController
	state       State
}

func NewCoordinator(videos []VideoDescriptor, controllers []MediaController) (*Coordinator, error) {
	state := NewState(len(videos))
	if len(controllers) != state.Slots() {
		return nil, fmt.Errorf("%d controllers for %d slots: %w", len(controllers), state.Slots(), ErrControllerCount)
	}
	v := make([]VideoDescriptor, len(videos))
	copy(v, videos)
	return &Coordinator{videos: v, controllers: controllers, state: state}, nil
}

// Mount starts muted looping playback on every slot. Autoplay failures leave
// the slot in its default muted state.
func (c *Coordinator) Mount(ctx context.Context) []Command {
	c.mu.Lock()
	defer c.mu.Unlock()

	cmds := make([]Command, 0, len(c.controllers))
	for slot := range c.controllers {
		cmds = append(cmds, Command{Slot: slot, Op: OpPlay})
	}
	return Apply(ctx, c.controllers, cmds)
}

func (c *Coordinator) ToggleMute(ctx context.Context, slot int) (Result, error) {
	return c.dispatch(ctx, Intent{Kind: IntentToggleMute, Slot: slot})
}

func (c *Coordinator) SelectSlot(ctx context.Context, slot int) (Result, error) {
	return c.dispatch(ctx, Intent{Kind: IntentSelect, Slot: slot})
}

func (c *Coordinator) dispatch(ctx context.Context, in Intent) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, cmds, err := Reduce(c.state, in)
	if err != nil {
		return Result{}, err
	}
	c.state = next
	failed := Apply(ctx, c.controllers, cmds)
	return Result{Intent: in, State: next, Commands: cmds, Failed: failed}, nil
}

func (c *Coordinator) IsMuted(slot int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.IsMuted(slot)
}

func (c *Coordinator) IsActive(slot int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.IsActive(slot)
}

func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Coordinator) Videos() []VideoDescriptor {
	return c.videos
}

func (c *Coordinator) Views() []SlotView {
	return c.Snapshot().Views(c.videos)
}
