package repositories

import (
	"context"

	"bandstand/internal/domain/models"
)

// VersionRepository persists immutable snapshots. The (setlist_id,
// version_number) unique constraint is the serialization point for
// concurrent snapshot creation: Create surfaces a duplicate number as
// domain.ErrConflict so the service can retry with the next one.
type VersionRepository interface {
	Create(ctx context.Context, version *models.SetlistVersion) error

	// ListBySetlist returns versions ordered by version number ascending,
	// without snapshot payloads.
	ListBySetlist(ctx context.Context, setlistID string) ([]models.SetlistVersion, error)

	// GetByID returns the full version, snapshot included, only if it
	// belongs to the given setlist.
	GetByID(ctx context.Context, setlistID, versionID string) (*models.SetlistVersion, error)

	// MaxVersionNumber returns 0 for a setlist with no versions.
	MaxVersionNumber(ctx context.Context, setlistID string) (int, error)

	DeleteAllBySetlist(ctx context.Context, setlistID string) error
}
