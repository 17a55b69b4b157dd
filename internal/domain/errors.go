package domain

import (
	"errors"
	"net/http"
)

// HTTPError is implemented by domain errors that map to an HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a setlist, item, version or comment that does
	// not exist or is not visible to the caller.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates malformed or out-of-range input.
	ValidationError struct {
		Message string
		// UnknownIDs carries the offending identifiers when a reorder
		// references items that do not belong to the setlist.
		UnknownIDs []string
	}

	// UnauthorizedError indicates a missing or invalid credential.
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates the caller lacks access to the resource.
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors for use with errors.Is across wrapping chains.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// ConflictError indicates a uniqueness conflict at the storage layer, e.g.
// two snapshots racing for the same version number.
type ConflictError struct {
	Message      string
	ResourceType string // setlist, item, version, comment
	ResourceID   string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
