package handler

import (
	"net/http"
	"time"

	"github.com/zenstudio/backend/internal/service"
)

// Handler serves the record API.
type Handler struct {
	records       service.RecordService
	database      string
	allowedOrigin string
	now           func() time.Time
}

// New creates a Handler. database describes where the dataset lives and is
// reported by the liveness endpoint; allowedOrigin defaults to "*".
func New(records service.RecordService, database, allowedOrigin string) *Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &Handler{
		records:       records,
		database:      database,
		allowedOrigin: allowedOrigin,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
		if h.allowedOrigin != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
