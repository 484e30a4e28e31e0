package carousel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sendrec/showcase/internal/catalog"
	"github.com/sendrec/showcase/internal/httputil"
	"github.com/sendrec/showcase/internal/media"
	"github.com/sendrec/showcase/internal/metrics"
	"github.com/sendrec/showcase/internal/playback"
	"github.com/sendrec/showcase/internal/validate"
)

// CommandHub carries media frames to the pages rendering a mount.
type CommandHub interface {
	media.Publisher
	Subscribe(w http.ResponseWriter, r *http.Request, mountID string) error
	Disconnect(mountID string)
}

type Handler struct {
	source   catalog.Source
	registry *Registry
	hub      CommandHub
}

func NewHandler(source catalog.Source, registry *Registry, hub CommandHub) *Handler {
	h := &Handler{source: source, registry: registry, hub: hub}
	if hub != nil {
		registry.OnRemove(func(m *Mount) { hub.Disconnect(m.ID) })
	}
	return h
}

type createMountRequest struct {
	Carousel string `json:"carousel"`
}

type mountResponse struct {
	ID         string              `json:"id"`
	Carousel   string              `json:"carousel"`
	Slots      []playback.SlotView `json:"slots"`
	ActiveSlot *int                `json:"activeSlot"`
	Commands   []playback.Command  `json:"commands,omitempty"`
	Failed     []playback.Command  `json:"failed,omitempty"`
}

type heroResponse struct {
	ID       string             `json:"id"`
	State    string             `json:"state"`
	Muted    bool               `json:"muted"`
	Source   string             `json:"source"`
	Commands []playback.Command `json:"commands,omitempty"`
	Failed   []playback.Command `json:"failed,omitempty"`
}

func (h *Handler) Videos(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if msg := validate.CarouselName(name); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}
	videos, err := h.source.Carousel(r.Context(), name)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	if videos == nil {
		videos = []playback.VideoDescriptor{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"carousel": name, "videos": videos})
}

func (h *Handler) CreateMount(w http.ResponseWriter, r *http.Request) {
	var req createMountRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validate.CarouselName(req.Carousel); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	m, failed, err := h.mountCarousel(r.Context(), req.Carousel)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	resp := carouselView(m)
	resp.Failed = failed
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) mountCarousel(ctx context.Context, name string) (*Mount, []playback.Command, error) {
	videos, err := h.source.Carousel(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	id := uuid.NewString()
	slots := playback.Layout{Videos: len(videos)}.Slots()
	coord, err := playback.NewCoordinator(videos, media.NewRemoteSet(h.hub, id, slots))
	if err != nil {
		return nil, nil, err
	}
	m := &Mount{ID: id, Kind: KindCarousel, Carousel: name, Coordinator: coord}
	h.registry.Add(m)

	failed := coord.Mount(ctx)
	recordFailures(failed)
	return m, failed, nil
}

func (h *Handler) GetMount(w http.ResponseWriter, r *http.Request) {
	m, err := h.registry.Get(chi.URLParam(r, "id"), KindCarousel)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "mount not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, carouselView(m))
}

func (h *Handler) ToggleMute(w http.ResponseWriter, r *http.Request) {
	h.handleIntent(w, r, playback.IntentToggleMute)
}

func (h *Handler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	h.handleIntent(w, r, playback.IntentSelect)
}

func (h *Handler) handleIntent(w http.ResponseWriter, r *http.Request, kind playback.IntentKind) {
	m, err := h.registry.Get(chi.URLParam(r, "id"), KindCarousel)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "mount not found")
		return
	}
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid slot")
		return
	}

	var res playback.Result
	switch kind {
	case playback.IntentToggleMute:
		res, err = m.Coordinator.ToggleMute(r.Context(), slot)
	default:
		res, err = m.Coordinator.SelectSlot(r.Context(), slot)
	}
	if errors.Is(err, playback.ErrSlotOutOfRange) {
		httputil.WriteError(w, http.StatusBadRequest, "slot out of range")
		return
	}
	if err != nil {
		slog.Error("carousel: intent failed", "mount", m.ID, "intent", kind.String(), "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not apply intent")
		return
	}
	metrics.RecordIntent(kind.String())
	recordFailures(res.Failed)

	resp := mountResponse{
		ID:         m.ID,
		Carousel:   m.Carousel,
		Slots:      res.State.Views(m.Coordinator.Videos()),
		ActiveSlot: activeSlot(res.State),
		Commands:   res.Commands,
		Failed:     res.Failed,
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteMount(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, http.StatusNotFound, "mount not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Subscribe attaches a websocket to a mount so the page receives media frames.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.registry.Get(id, KindCarousel); err != nil {
		if _, err := h.registry.Get(id, KindHero); err != nil {
			httputil.WriteError(w, http.StatusNotFound, "mount not found")
			return
		}
	}
	if h.hub == nil {
		httputil.WriteError(w, http.StatusServiceUnavailable, "media hub disabled")
		return
	}
	if err := h.hub.Subscribe(w, r, id); err != nil {
		slog.Warn("carousel: websocket subscribe failed", "mount", id, "error", err)
	}
}

func (h *Handler) CreateHero(w http.ResponseWriter, r *http.Request) {
	m, failed, err := h.mountHero(r.Context())
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	resp := heroView(m)
	resp.Failed = failed
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) mountHero(ctx context.Context) (*Mount, []playback.Command, error) {
	sources, err := h.source.Hero(ctx)
	if err != nil {
		return nil, nil, err
	}
	id := uuid.NewString()
	hero := playback.NewHeroController(sources, media.NewRemote(h.hub, id, 0))
	m := &Mount{ID: id, Kind: KindHero, Hero: hero}
	h.registry.Add(m)

	failed := hero.Mount(ctx)
	recordFailures(failed)
	return m, failed, nil
}

func (h *Handler) GetHero(w http.ResponseWriter, r *http.Request) {
	m, err := h.registry.Get(chi.URLParam(r, "id"), KindHero)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "mount not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, heroView(m))
}

func (h *Handler) TapHero(w http.ResponseWriter, r *http.Request) {
	m, err := h.registry.Get(chi.URLParam(r, "id"), KindHero)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "mount not found")
		return
	}
	res := m.Hero.Tap(r.Context())
	metrics.RecordIntent("hero_tap")
	recordFailures(res.Failed)

	resp := heroView(m)
	resp.Commands = res.Commands
	resp.Failed = res.Failed
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrCarouselNotFound):
		httputil.WriteError(w, http.StatusNotFound, "carousel not found")
	case errors.Is(err, catalog.ErrHeroNotConfigured):
		httputil.WriteError(w, http.StatusNotFound, "hero video not configured")
	default:
		slog.Error("carousel: catalog lookup failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not load videos")
	}
}

func carouselView(m *Mount) mountResponse {
	state := m.Coordinator.Snapshot()
	return mountResponse{
		ID:         m.ID,
		Carousel:   m.Carousel,
		Slots:      state.Views(m.Coordinator.Videos()),
		ActiveSlot: activeSlot(state),
	}
}

func heroView(m *Mount) heroResponse {
	state := m.Hero.State()
	src := m.Hero.Sources().HighRes
	if state == playback.HeroLowResMuted {
		src = m.Hero.Sources().LowRes
	}
	return heroResponse{
		ID:     m.ID,
		State:  state.String(),
		Muted:  state.Muted(),
		Source: src,
	}
}

func activeSlot(s playback.State) *int {
	if slot, ok := s.Active(); ok {
		return &slot
	}
	return nil
}

func recordFailures(failed []playback.Command) {
	for _, cmd := range failed {
		metrics.RecordCommandFailure(string(cmd.Op))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, catalog.ErrCarouselNotFound) || errors.Is(err, catalog.ErrHeroNotConfigured)
}
