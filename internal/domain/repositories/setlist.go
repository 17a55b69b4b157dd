package repositories

import (
	"context"

	"bandstand/internal/domain/models"
)

// SetlistRepository persists the root aggregate.
type SetlistRepository interface {
	Create(ctx context.Context, setlist *models.Setlist) error

	// GetByID returns a live (not soft-deleted) setlist without items.
	GetByID(ctx context.Context, id string) (*models.Setlist, error)

	// ListForUser returns setlists the user can see: their own, their
	// bands', and public ones.
	ListForUser(ctx context.Context, userID string) ([]models.Setlist, error)

	Update(ctx context.Context, setlist *models.Setlist) error

	// SoftDelete tombstones the setlist. Dependent rows are removed by the
	// service inside the same transaction.
	SoftDelete(ctx context.Context, id string) error
}

// MembershipRepository answers band-membership questions for access
// decisions. Band management itself lives in another service.
type MembershipRepository interface {
	IsMember(ctx context.Context, bandID, userID string) (bool, error)
}
