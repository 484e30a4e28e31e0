package media

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sendrec/showcase/internal/playback"
)

// Publisher delivers an encoded frame to everything rendering a mount.
type Publisher interface {
	Publish(ctx context.Context, mountID string, frame []byte) error
}

// Frame is the wire form of one media command.
type Frame struct {
	Mount string `json:"mount"`
	playback.Command
	Seconds *float64 `json:"seconds,omitempty"`
}

var _ playback.HeroMedia = (*Remote)(nil)

// Remote is the server-side handle of one media element rendered in a browser.
// Each call becomes a frame the page applies to its element.
type Remote struct {
	pub   Publisher
	mount string
	slot  int
}

func NewRemote(pub Publisher, mountID string, slot int) *Remote {
	return &Remote{pub: pub, mount: mountID, slot: slot}
}

// NewRemoteSet builds one handle per slot of a carousel mount.
func NewRemoteSet(pub Publisher, mountID string, slots int) []playback.MediaController {
	out := make([]playback.MediaController, slots)
	for i := range out {
		out[i] = NewRemote(pub, mountID, i)
	}
	return out
}

func (r *Remote) Play(ctx context.Context) error {
	return r.send(ctx, Frame{Command: playback.Command{Op: playback.OpPlay}})
}

func (r *Remote) Pause(ctx context.Context) error {
	return r.send(ctx, Frame{Command: playback.Command{Op: playback.OpPause}})
}

func (r *Remote) SetMuted(ctx context.Context, muted bool) error {
	op := playback.OpUnmute
	if muted {
		op = playback.OpMute
	}
	return r.send(ctx, Frame{Command: playback.Command{Op: op}})
}

func (r *Remote) SetCurrentTime(ctx context.Context, seconds float64) error {
	return r.send(ctx, Frame{Command: playback.Command{Op: playback.OpSeekToStart}, Seconds: &seconds})
}

func (r *Remote) SetSource(ctx context.Context, url string) error {
	return r.send(ctx, Frame{Command: playback.Command{Op: playback.OpSetSource, Source: url}})
}

func (r *Remote) Load(ctx context.Context) error {
	return r.send(ctx, Frame{Command: playback.Command{Op: playback.OpLoad}})
}

func (r *Remote) send(ctx context.Context, f Frame) error {
	if r.pub == nil {
		return fmt.Errorf("mount %s slot %d: no publisher", r.mount, r.slot)
	}
	f.Mount = r.mount
	f.Slot = r.slot
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := r.pub.Publish(ctx, r.mount, data); err != nil {
		return fmt.Errorf("publish %s to mount %s slot %d: %w", f.Op, r.mount, r.slot, err)
	}
	return nil
}
