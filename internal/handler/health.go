package handler

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

// Health handles GET /api/test. It only proves the process is serving.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Message:   "API funcionando!",
		Timestamp: h.now(),
		Database:  h.database,
	})
}
