package media

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/olahol/melody"
)

const mountKey = "mount"

// Hub pushes media command frames to the pages that rendered a mount.
type Hub struct {
	m *melody.Melody
}

func NewHub() *Hub {
	m := melody.New()

	// heartbeat from the page
	m.HandleMessage(func(s *melody.Session, msg []byte) {
		if !bytes.Equal(msg, []byte("ping")) {
			return
		}
		if err := s.Write([]byte("pong")); err != nil {
			slog.Warn("media hub: sending pong", "error", err)
		}
	})
	m.HandleError(func(s *melody.Session, err error) {
		slog.Debug("media hub: session error", "error", err)
	})

	return &Hub{m: m}
}

// Subscribe upgrades the request and attaches the connection to mountID.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, mountID string) error {
	return h.m.HandleRequestWithKeys(w, r, map[string]any{mountKey: mountID})
}

func (h *Hub) Publish(ctx context.Context, mountID string, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.m.BroadcastFilter(frame, func(s *melody.Session) bool {
		v, ok := s.Get(mountKey)
		return ok && v == mountID
	})
}

// Disconnect closes every connection attached to mountID.
func (h *Hub) Disconnect(mountID string) {
	sessions, err := h.m.Sessions()
	if err != nil {
		return
	}
	for _, s := range sessions {
		if v, ok := s.Get(mountKey); ok && v == mountID {
			_ = s.Close()
		}
	}
}

func (h *Hub) Close() error {
	return h.m.Close()
}
