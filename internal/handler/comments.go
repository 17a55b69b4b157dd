package handler

import (
	"log/slog"
	"net/http"

	"bandstand/internal/domain/services"
	"bandstand/internal/httputil"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	errorResponder
	comments services.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(comments services.CommentService, logger *slog.Logger, debug bool) *CommentHandler {
	return &CommentHandler{
		errorResponder: errorResponder{logger: logger, debug: debug},
		comments:       comments,
	}
}

// AddComment posts a comment or a reply
// POST /api/setlists/{id}/comments
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.AddCommentRequest
	if err := httputil.ParseJSON(r, w, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.comments.AddComment(r.Context(), p.UserID, setlistID, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, comment)
}

// ListComments returns the thread, replies nested one level deep
// GET /api/setlists/{id}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.comments.ListComments(r.Context(), p.UserID, setlistID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, comments)
}

// DeleteComment removes a comment and its direct replies
// DELETE /api/setlists/{id}/comments/{commentId}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	setlistID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}

	if err := h.comments.DeleteComment(r.Context(), p.UserID, setlistID, commentID); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
