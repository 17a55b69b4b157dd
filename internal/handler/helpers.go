package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"bandstand/internal/domain"
	"bandstand/internal/domain/models"
	"bandstand/internal/httputil"

	"github.com/google/uuid"
)

// errorResponder maps domain errors to HTTP responses. Errors outside
// the domain taxonomy become a 500; those are logged, and their detail
// reaches the client only in debug mode.
type errorResponder struct {
	logger *slog.Logger
	debug  bool
}

func (e errorResponder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &validationErr):
		var extras map[string]interface{}
		if len(validationErr.UnknownIDs) > 0 {
			extras = map[string]interface{}{"unknownIds": validationErr.UnknownIDs}
		}
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, validationErr.Error(), extras)
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	default:
		e.logger.Error("unhandled error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		detail := "internal server error"
		if e.debug {
			detail = err.Error()
		}
		httputil.RespondError(w, http.StatusInternalServerError, detail)
	}
}

// principal returns the authenticated user or writes a 401.
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := httputil.PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
	}
	return p, ok
}

// pathID extracts a UUID path segment or writes a 400.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if _, err := uuid.Parse(id); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, name+" must be a valid UUID")
		return "", false
	}
	return id, true
}
