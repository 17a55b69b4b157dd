package handler

import (
	"log/slog"
	"net/http"
	"time"

	"bandstand/internal/domain/services"
	"bandstand/internal/httputil"
)

// SetlistHandler handles setlist HTTP requests
type SetlistHandler struct {
	errorResponder
	setlists services.SetlistService
}

// NewSetlistHandler creates a new setlist handler
func NewSetlistHandler(setlists services.SetlistService, logger *slog.Logger, debug bool) *SetlistHandler {
	return &SetlistHandler{
		errorResponder: errorResponder{logger: logger, debug: debug},
		setlists:       setlists,
	}
}

// CreateSetlist creates a new setlist
// POST /api/setlists
func (h *SetlistHandler) CreateSetlist(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req services.CreateSetlistRequest
	if err := httputil.ParseJSON(r, w, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	setlist, err := h.setlists.CreateSetlist(r.Context(), p.UserID, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, setlist)
}

// GetSetlist returns one setlist with its ordered items
// GET /api/setlists/{id}
func (h *SetlistHandler) GetSetlist(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	setlist, err := h.setlists.GetSetlist(r.Context(), p.UserID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, setlist)
}

// ListSetlists returns the setlists visible to the caller
// GET /api/setlists
func (h *SetlistHandler) ListSetlists(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	setlists, err := h.setlists.ListSetlists(r.Context(), p.UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, setlists)
}

// UpdateSetlist applies a partial metadata update
// PUT /api/setlists/{id}
func (h *SetlistHandler) UpdateSetlist(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpdateSetlistRequest
	if err := httputil.ParseJSON(r, w, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	setlist, err := h.setlists.UpdateSetlist(r.Context(), p.UserID, id, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, setlist)
}

// DeleteSetlist tombstones a setlist and its dependents
// DELETE /api/setlists/{id}
func (h *SetlistHandler) DeleteSetlist(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.setlists.DeleteSetlist(r.Context(), p.UserID, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportSetlist renders the setlist as csv or txt
// GET /api/setlists/{id}/export?format=csv
func (h *SetlistHandler) ExportSetlist(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "txt"
	}

	body, contentType, err := h.setlists.ExportSetlist(r.Context(), p.UserID, id, format)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="setlist-`+id+`.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// HealthCheck is a simple health check endpoint
func (h *SetlistHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
