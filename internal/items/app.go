package items

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ItemStore/internal/auth"
	"ItemStore/pkg/kit"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	readyTimeout          = 1 * time.Second
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	Guard        *auth.Guard
	AdminLimiter *kit.IPRateLimiter

	// RequestTimeout defaults to DefaultRequestTimeout.
	RequestTimeout time.Duration
	// Ready backs /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

func NewHandler(s *Server, deps HTTPDeps) (http.Handler, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("items: server store is required")
	}
	if deps.Guard == nil {
		return nil, errors.New("items: admin guard is required")
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if s.Log == nil {
		s.Log = deps.Log
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	setupMiddleware(r, deps)
	setupMetrics(r, deps)
	setupRoutes(r, s, deps)

	return r, nil
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Logging(deps.Log))

	if deps.Registry != nil {
		metrics := kit.NewMetrics(deps.Registry)
		r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))
	}

	r.Use(kit.Timeout(deps.RequestTimeout))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil || !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func setupRoutes(r *chi.Mux, s *Server, deps HTTPDeps) {
	r.NotFound(kit.NotFound)
	r.MethodNotAllowed(kit.MethodNotAllowed)

	r.Get("/", s.root)
	r.Get("/version", s.version)
	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps))

	r.Get("/item", s.queryItem)
	r.Get("/items", s.listItems)
	r.Post("/items", s.createItem)

	r.Route("/admin", func(ar chi.Router) {
		if deps.AdminLimiter != nil {
			ar.Use(deps.AdminLimiter.Middleware)
		}
		ar.Use(auth.RequireAPIKey(deps.Guard, deps.Log))

		ar.Delete("/clear_items", s.clearItems)
		ar.Delete("/remove/{name}", s.removeItem)
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps HTTPDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready == nil {
			w.WriteHeader(http.StatusOK)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Ready(ctx); err != nil {
			deps.Log.Warn("readyz failed", zap.Error(err))
			kit.WriteMessage(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
