package playback

import (
	"context"
	"fmt"
	"log/slog"
)

// MediaController is the handle to one rendered media element. Calls are fire
// and forget from the coordinator's point of view: errors are logged, never
// propagated, and never roll back state.
type MediaController interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SetMuted(ctx context.Context, muted bool) error
	SetCurrentTime(ctx context.Context, seconds float64) error
}

// HeroMedia is a media element whose source can be swapped.
type HeroMedia interface {
	MediaController
	SetSource(ctx context.Context, url string) error
	Load(ctx context.Context) error
}

// Apply runs cmds in order against controllers indexed by slot and returns the
// commands that failed.
func Apply(ctx context.Context, controllers []MediaController, cmds []Command) []Command {
	var failed []Command
	for _, cmd := range cmds {
		if cmd.Slot < 0 || cmd.Slot >= len(controllers) || controllers[cmd.Slot] == nil {
			slog.Warn("playback: no media controller for slot", "slot", cmd.Slot, "op", cmd.Op)
			failed = append(failed, cmd)
			continue
		}
		if err := run(ctx, controllers[cmd.Slot], cmd); err != nil {
			slog.Warn("playback: media command failed", "slot", cmd.Slot, "op", cmd.Op, "error", err)
			failed = append(failed, cmd)
		}
	}
	return failed
}

func run(ctx context.Context, mc MediaController, cmd Command) error {
	switch cmd.Op {
	case OpSeekToStart:
		return mc.SetCurrentTime(ctx, 0)
	case OpUnmute:
		return mc.SetMuted(ctx, false)
	case OpMute:
		return mc.SetMuted(ctx, true)
	case OpPlay:
		return mc.Play(ctx)
	case OpPause:
		return mc.Pause(ctx)
	case OpSetSource, OpLoad:
		hm, ok := mc.(HeroMedia)
		if !ok {
			return fmt.Errorf("%s: controller cannot swap sources", cmd.Op)
		}
		if cmd.Op == OpLoad {
			return hm.Load(ctx)
		}
		return hm.SetSource(ctx, cmd.Source)
	default:
		return fmt.Errorf("unknown op %q", cmd.Op)
	}
}
