package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the record API under /api. limiter throttles public
// submissions (POST) and may be nil; metrics is served at /metrics when
// non-nil.
func NewRouter(h *Handler, limiter *RateLimiter, metrics http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(Recover)
	r.Use(SecurityHeaders)
	r.Use(h.CORS)

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/test", h.Health)

		r.Route("/{collection}", func(r chi.Router) {
			r.Get("/", h.List)
			r.With(limiter.Middleware).Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Patch("/{id}/status", h.ToggleStatus)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return r
}
