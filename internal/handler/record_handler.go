package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zenstudio/backend/internal/model"
	"github.com/zenstudio/backend/internal/repository"
)

const maxBodyBytes = 1 << 20

// deletedMessages are the confirmation texts returned by DELETE.
var deletedMessages = map[model.Collection]string{
	model.CollectionLeads:       "Lead removido com sucesso",
	model.CollectionEnrollments: "Matrícula removida com sucesso",
	model.CollectionContacts:    "Contato removido com sucesso",
}

// collection resolves the {collection} URL parameter, writing a 404 when it
// names nothing we store.
func collection(w http.ResponseWriter, r *http.Request) (model.Collection, bool) {
	c, ok := model.ParseCollection(chi.URLParam(r, "collection"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_collection")
	}
	return c, ok
}

// decodeFields reads a JSON object body. Anything else is a 400.
func decodeFields(w http.ResponseWriter, r *http.Request) (repository.Fields, bool) {
	var f repository.Fields
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&f); err != nil || f == nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return nil, false
	}
	return f, true
}

// List handles GET /api/{collection}.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	c, ok := collection(w, r)
	if !ok {
		return
	}
	records, err := h.records.List(r.Context(), c)
	if err != nil {
		h.writeServiceError(w, r, c, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Create handles POST /api/{collection}.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := collection(w, r)
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	rec, err := h.records.Create(r.Context(), c, fields)
	if err != nil {
		h.writeServiceError(w, r, c, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Update handles PUT /api/{collection}/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := collection(w, r)
	if !ok {
		return
	}
	patch, ok := decodeFields(w, r)
	if !ok {
		return
	}
	rec, err := h.records.Update(r.Context(), c, chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeServiceError(w, r, c, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ToggleStatus handles PATCH /api/{collection}/{id}/status.
func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := collection(w, r)
	if !ok {
		return
	}
	rec, err := h.records.ToggleStatus(r.Context(), c, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, c, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /api/{collection}/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := collection(w, r)
	if !ok {
		return
	}
	if err := h.records.Delete(r.Context(), c, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, c, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": deletedMessages[c]})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, c model.Collection, err error) {
	var verr *repository.ValidationError
	switch {
	case errors.As(err, &verr):
		code := "invalid_fields"
		if len(verr.Missing) > 0 {
			code = "missing_fields"
		}
		writeJSON(w, http.StatusBadRequest, fieldsError{Error: code, Fields: verr.Fields()})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, repository.ErrUnknownCollection):
		writeError(w, http.StatusNotFound, "unknown_collection")
	default:
		slog.Error("record operation failed",
			"error", err,
			"collection", c,
			"method", r.Method,
			"request_id", middleware.GetReqID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
