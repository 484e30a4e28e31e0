package carousel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sendrec/showcase/internal/metrics"
	"github.com/sendrec/showcase/internal/playback"
)

var ErrMountNotFound = errors.New("mount not found")

type Kind string

const (
	KindCarousel Kind = "carousel"
	KindHero     Kind = "hero"
)

// Mount is one rendered carousel or hero video. It is never shared between
// pages and is dropped on unmount or once idle for longer than the registry TTL.
type Mount struct {
	ID          string
	Kind        Kind
	Carousel    string
	CreatedAt   time.Time
	Coordinator *playback.Coordinator
	Hero        *playback.HeroController

	lastSeen time.Time
}

type Registry struct {
	mu       sync.Mutex
	mounts   map[string]*Mount
	ttl      time.Duration
	now      func() time.Time
	onRemove func(*Mount)
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		mounts: make(map[string]*Mount),
		ttl:    ttl,
		now:    time.Now,
	}
}

// OnRemove registers a callback run for every mount that leaves the registry.
func (r *Registry) OnRemove(fn func(*Mount)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRemove = fn
}

func (r *Registry) Add(m *Mount) {
	r.mu.Lock()
	now := r.now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.lastSeen = now
	r.mounts[m.ID] = m
	r.mu.Unlock()

	metrics.MountAdded(string(m.Kind))
}

// Get returns the mount and marks it as seen.
func (r *Registry) Get(id string, kind Kind) (*Mount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mounts[id]
	if !ok || m.Kind != kind {
		return nil, ErrMountNotFound
	}
	m.lastSeen = r.now()
	return m, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	m, ok := r.mounts[id]
	if ok {
		delete(r.mounts, id)
	}
	onRemove := r.onRemove
	r.mu.Unlock()

	if !ok {
		return ErrMountNotFound
	}
	r.removed(m, onRemove)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mounts)
}

// Sweep drops mounts idle for longer than the TTL and returns how many went.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	cutoff := r.now().Add(-r.ttl)
	var expired []*Mount
	for id, m := range r.mounts {
		if m.lastSeen.Before(cutoff) {
			expired = append(expired, m)
			delete(r.mounts, id)
		}
	}
	onRemove := r.onRemove
	r.mu.Unlock()

	for _, m := range expired {
		r.removed(m, onRemove)
	}
	return len(expired)
}

func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					slog.Info("carousel: swept idle mounts", "count", n)
				}
			}
		}
	}()
}

func (r *Registry) removed(m *Mount, onRemove func(*Mount)) {
	metrics.MountRemoved(string(m.Kind))
	if onRemove != nil {
		onRemove(m)
	}
}
