package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/enquiry-console/internal/application/console"
	appenq "github.com/bryanwahyu/enquiry-console/internal/application/enquiries"
	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
	"github.com/bryanwahyu/enquiry-console/internal/logger"
	"github.com/bryanwahyu/enquiry-console/internal/middleware"
)

// Deps is everything the router serves from
type Deps struct {
	Service        *appenq.Service
	Sessions       *console.Sessions
	Health         map[string]middleware.HealthChecker
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string
	LimitPerPage   int
}

type Router struct {
	svc      *appenq.Service
	sessions *console.Sessions
	limit    int
	pages    *pages
}

func NewRouter(d Deps) http.Handler {
	limit := d.LimitPerPage
	if limit <= 0 {
		limit = console.DefaultLimitPerPage
	}
	r := &Router{
		svc:      d.Service,
		sessions: d.Sessions,
		limit:    limit,
		pages:    newPages(),
	}
	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(0, 0)
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(chimw.Recoverer)
	if len(d.AllowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	mux.Get("/health", middleware.HealthHandler(d.Health))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler(d.Health))
	mux.Handle("/metrics", middleware.MetricsHandler())

	// console pages
	mux.Get("/", r.handleConsole)
	mux.Get("/enquiries/{id}/delete", r.handleConfirmDelete)
	mux.Group(func(rt chi.Router) {
		rt.Use(limiter.Middleware)
		rt.Post("/pages/next", r.handleNext)
		rt.Post("/pages/previous", r.handlePrevious)
		rt.Post("/enquiries/{id}/attend", r.handleAttend)
		rt.Post("/enquiries/{id}/delete", r.handleDelete)
	})

	mux.Route("/api/enquiries", func(rt chi.Router) {
		rt.Get("/", r.wrap(r.handleList))
		rt.Get("/{id}", r.wrap(r.handleGet))
		rt.Group(func(rt chi.Router) {
			rt.Use(limiter.Middleware)
			rt.Patch("/{id}", r.wrap(r.handlePatch))
			rt.Delete("/{id}", r.wrap(r.handleDeleteAPI))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			logger.C(req.Context()).Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCursor),
		errors.Is(err, domain.ErrInvalidUpdate),
		errors.Is(err, domain.ErrInvalidPage),
		errors.Is(err, appenq.ErrInvalidEnquiry),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCursorOutOfSequence):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
