package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brk3/arena/internal/cache"
	"github.com/brk3/arena/internal/config"
	"github.com/brk3/arena/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	store storage.Store
	cache cache.Cache
	cfg   *config.Config
	loc   *time.Location

	// now is injectable so date bucketing is deterministic in tests
	now func() time.Time

	authProviders map[string]*AuthProvider
}

func New(store storage.Store, c cache.Cache, cfg *config.Config) (*Server, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	s := &Server{
		store: store,
		cache: c,
		cfg:   cfg,
		loc:   loc,
		now:   time.Now,
	}

	if cfg.AuthEnabled {
		providers, err := ConfigureOIDCProviders(cfg)
		if err != nil {
			return nil, err
		}
		s.authProviders = providers
	}

	return s, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(metricsMiddleware)

	r.Get("/version", s.getVersionInfo)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.AuthEnabled {
			r.Use(s.authMiddleware)
		}
		r.Route("/arenas", func(r chi.Router) {
			r.Post("/", s.createArena)
			r.Get("/", s.listArenas)
			r.Get("/{arena_id}", s.getArena)
			r.Delete("/{arena_id}", s.deleteArena)
			r.Post("/{arena_id}/join", s.joinArena)
			r.Post("/{arena_id}/leave", s.leaveArena)
			r.Post("/{arena_id}/completions", s.recordCompletion)
			r.Get("/{arena_id}/leaderboard", s.getLeaderboard)
			r.Get("/{arena_id}/history", s.getHistory)
			r.Get("/{arena_id}/participants", s.getParticipants)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

// viewerLocation resolves the timezone used for date bucketing: the tz
// query parameter when present, the configured default otherwise.
func (s *Server) viewerLocation(r *http.Request) (*time.Location, error) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		return s.loc, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid tz %q", tz)
	}
	return loc, nil
}
