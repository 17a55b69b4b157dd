package services

import (
	"context"

	"bandstand/internal/domain/models"
)

// SetlistAuthorizer decides whether a user may read or mutate a setlist.
// Read access: creator, band member, or anyone when the setlist is
// public. Write access: creator or band member.
type SetlistAuthorizer interface {
	CanRead(ctx context.Context, userID string, setlist *models.Setlist) error
	CanWrite(ctx context.Context, userID string, setlist *models.Setlist) error
}
