package services

import (
	"context"
	"time"

	"bandstand/internal/domain/models"
)

// SetlistService is the aggregate root API: setlist CRUD plus the
// export view. Composite mutations (cascade delete) run inside a single
// transaction owned by the implementation.
type SetlistService interface {
	CreateSetlist(ctx context.Context, userID string, req *CreateSetlistRequest) (*models.Setlist, error)

	// GetSetlist returns the setlist with its items ordered by
	// (set_number, position).
	GetSetlist(ctx context.Context, userID, setlistID string) (*models.Setlist, error)

	ListSetlists(ctx context.Context, userID string) ([]models.Setlist, error)

	UpdateSetlist(ctx context.Context, userID, setlistID string, req *UpdateSetlistRequest) (*models.Setlist, error)

	// DeleteSetlist tombstones the setlist and removes its items, versions
	// and comments in the same transaction.
	DeleteSetlist(ctx context.Context, userID, setlistID string) error

	// ExportSetlist renders the ordered item list as "csv" or "txt".
	ExportSetlist(ctx context.Context, userID, setlistID, format string) ([]byte, string, error)
}

// CreateSetlistRequest carries the fields a client may set on creation.
type CreateSetlistRequest struct {
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	BandID        *string    `json:"band_id,omitempty"`
	IsPublic      bool       `json:"is_public"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	Venue         *string    `json:"venue,omitempty"`
	TotalDuration *int       `json:"total_duration,omitempty"`
}

// UpdateSetlistRequest carries partial metadata updates; nil fields are
// left untouched.
type UpdateSetlistRequest struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	IsPublic      *bool      `json:"is_public,omitempty"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	Venue         *string    `json:"venue,omitempty"`
	TotalDuration *int       `json:"total_duration,omitempty"`
}
