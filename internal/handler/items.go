package handler

import (
	"log/slog"
	"net/http"

	"bandstand/internal/domain/services"
	"bandstand/internal/httputil"
)

// ItemHandler handles setlist item HTTP requests
type ItemHandler struct {
	errorResponder
	ordering services.OrderingService
}

// NewItemHandler creates a new item handler
func NewItemHandler(ordering services.OrderingService, logger *slog.Logger, debug bool) *ItemHandler {
	return &ItemHandler{
		errorResponder: errorResponder{logger: logger, debug: debug},
		ordering:       ordering,
	}
}

// ListItems returns the setlist's items ordered by (set, position)
// GET /api/setlists/{id}/items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	items, err := h.ordering.ListItems(r.Context(), p.UserID, setlistID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}

// AddItem inserts a song into the setlist
// POST /api/setlists/{id}/items
func (h *ItemHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.AddItemRequest
	if err := httputil.ParseJSON(r, w, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.ordering.AddItem(r.Context(), p.UserID, setlistID, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, item)
}

// UpdateItem changes an item's override fields
// PUT /api/setlists/{id}/items/{itemId}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	var req services.UpdateItemRequest
	if err := httputil.ParseJSON(r, w, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.ordering.UpdateItem(r.Context(), p.UserID, setlistID, itemID, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// RemoveItem deletes an item
// DELETE /api/setlists/{id}/items/{itemId}
func (h *ItemHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	if err := h.ordering.RemoveItem(r.Context(), p.UserID, setlistID, itemID); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reorder applies a bulk position assignment
// PUT /api/setlists/{id}/reorder
func (h *ItemHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.ReorderRequest
	if err := httputil.ParseJSON(r, w, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.ordering.Reorder(r.Context(), p.UserID, setlistID, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}
