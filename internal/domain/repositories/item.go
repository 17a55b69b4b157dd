package repositories

import (
	"context"

	"bandstand/internal/domain/models"
)

// ItemRepository persists setlist items. Mutations that touch more than
// one row (shifts, reorders, restores) are expected to run inside a
// transaction provided by the TransactionManager; the position
// uniqueness constraint is checked at commit.
type ItemRepository interface {
	Create(ctx context.Context, item *models.SetlistItem) error

	// GetByID returns the item only if it belongs to the given setlist.
	GetByID(ctx context.Context, setlistID, itemID string) (*models.SetlistItem, error)

	// ListBySetlist returns items ordered by (set_number, position).
	ListBySetlist(ctx context.Context, setlistID string) ([]models.SetlistItem, error)

	// Update persists override fields and set_number; position is written
	// only through ShiftPositions/UpdatePositions.
	Update(ctx context.Context, item *models.SetlistItem) error

	Delete(ctx context.Context, setlistID, itemID string) error

	DeleteAllBySetlist(ctx context.Context, setlistID string) error

	// MaxPosition returns the highest position within (setlist, set).
	// ok is false when the set has no items.
	MaxPosition(ctx context.Context, setlistID string, setNumber int) (max int, ok bool, err error)

	// ShiftPositions moves every item of the set at or after fromPosition
	// down by one, opening a slot for an insert.
	ShiftPositions(ctx context.Context, setlistID string, setNumber, fromPosition int) error

	// UpdatePositions applies a computed reorder in one statement.
	UpdatePositions(ctx context.Context, setlistID string, assignments []models.PositionAssignment) error
}

// SongRepository is the read-only view of the song catalog that the
// ordering engine and the export view need.
type SongRepository interface {
	Exists(ctx context.Context, songID string) (bool, error)

	// GetByIDs returns the catalog entries for the given IDs, keyed by ID.
	// Missing songs are simply absent from the map.
	GetByIDs(ctx context.Context, songIDs []string) (map[string]models.Song, error)
}
