package handler

import (
	"log/slog"
	"net/http"

	"bandstand/internal/domain/services"
	"bandstand/internal/httputil"
)

// VersionHandler handles version snapshot HTTP requests
type VersionHandler struct {
	errorResponder
	versions services.VersionService
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(versions services.VersionService, logger *slog.Logger, debug bool) *VersionHandler {
	return &VersionHandler{
		errorResponder: errorResponder{logger: logger, debug: debug},
		versions:       versions,
	}
}

// CreateVersion snapshots the current item list
// POST /api/setlists/{id}/versions
func (h *VersionHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.CreateVersionRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(r, w, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	version, err := h.versions.CreateVersion(r.Context(), p.UserID, setlistID, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, version)
}

// ListVersions returns version metadata, ascending by number
// GET /api/setlists/{id}/versions
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	versions, err := h.versions.ListVersions(r.Context(), p.UserID, setlistID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}

// GetVersion returns one version with its full snapshot
// GET /api/setlists/{id}/versions/{versionId}
func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	versionID, ok := pathID(w, r, "versionId")
	if !ok {
		return
	}

	version, err := h.versions.GetVersion(r.Context(), p.UserID, setlistID, versionID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, version)
}

// Restore replaces the live items with a snapshot's contents
// POST /api/setlists/{id}/versions/{versionId}/restore
func (h *VersionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	versionID, ok := pathID(w, r, "versionId")
	if !ok {
		return
	}

	setlist, err := h.versions.Restore(r.Context(), p.UserID, setlistID, versionID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, setlist)
}
