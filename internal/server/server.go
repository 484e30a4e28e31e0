package server

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sendrec/showcase/internal/carousel"
	"github.com/sendrec/showcase/internal/catalog"
	"github.com/sendrec/showcase/internal/database"
	"github.com/sendrec/showcase/internal/docs"
	"github.com/sendrec/showcase/internal/httputil"
	"github.com/sendrec/showcase/internal/ratelimit"
	"github.com/sendrec/showcase/internal/validate"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	// DB enables the Postgres catalog; Catalog takes precedence when both are set.
	DB               database.DBTX
	Pinger           Pinger
	Storage          catalog.ObjectStorage
	Catalog          catalog.Source
	Hub              carousel.CommandHub
	Registry         *carousel.Registry
	WebFS            fs.FS
	BaseURL          string
	S3PublicEndpoint string
	MediaOrigins     []string
	AllowedOrigins   []string
	EnableDocs       bool
}

type Server struct {
	router          chi.Router
	pinger          Pinger
	carouselHandler *carousel.Handler
	enableDocs      bool
	webFS           fs.FS
	limiters        []*ratelimit.Limiter
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(slogMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:         cfg.BaseURL,
		StorageEndpoint: cfg.S3PublicEndpoint,
		MediaOrigins:    cfg.MediaOrigins,
	}))
	// Preflights never match a route, so CORS has to wrap the whole router.
	// An empty origin list would allow every origin; leave CORS off instead.
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	s := &Server{
		router:     r,
		pinger:     cfg.Pinger,
		enableDocs: cfg.EnableDocs,
		webFS:      cfg.WebFS,
	}

	source := cfg.Catalog
	if source == nil && cfg.DB != nil {
		source = catalog.NewPostgresSource(cfg.DB, cfg.Storage)
	}
	if source != nil {
		registry := cfg.Registry
		if registry == nil {
			registry = carousel.NewRegistry(0)
		}
		s.carouselHandler = carousel.NewHandler(source, registry, cfg.Hub)
	}

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the router.
func (s *Server) Close() {
	for _, l := range s.limiters {
		l.Close()
	}
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/limits", s.handleLimits)
	s.router.Handle("/metrics", promhttp.Handler())

	if s.enableDocs {
		s.router.Get("/api/docs", docs.HandleDocs)
		s.router.Get("/api/docs/openapi.yaml", docs.HandleSpec)
	}

	if s.carouselHandler != nil {
		h := s.carouselHandler
		mountLimiter := ratelimit.NewLimiter("mounts", 1, 10)
		intentLimiter := ratelimit.NewLimiter("intents", 10, 30)
		s.limiters = append(s.limiters, mountLimiter, intentLimiter)

		s.router.Group(func(r chi.Router) {
			r.Get("/api/carousels/{name}", h.Videos)

			r.With(mountLimiter.Middleware).Post("/api/mounts", h.CreateMount)
			r.Get("/api/mounts/{id}", h.GetMount)
			r.Delete("/api/mounts/{id}", h.DeleteMount)
			r.Get("/api/mounts/{id}/ws", h.Subscribe)
			r.With(intentLimiter.Middleware).Post("/api/mounts/{id}/slots/{slot}/mute", h.ToggleMute)
			r.With(intentLimiter.Middleware).Post("/api/mounts/{id}/slots/{slot}/select", h.SelectSlot)

			r.With(mountLimiter.Middleware).Post("/api/hero", h.CreateHero)
			r.Get("/api/hero/{id}", h.GetHero)
			r.With(intentLimiter.Middleware).Post("/api/hero/{id}/tap", h.TapHero)
		})

		s.router.With(mountLimiter.Middleware).Get("/showcase/{name}", h.ShowcasePage)
	}

	if s.webFS != nil {
		spa := newSPAFileServer(s.webFS)
		s.router.NotFound(spa.ServeHTTP)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, validate.FieldLimits())
}
