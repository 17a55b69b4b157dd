package services

import (
	"context"

	"bandstand/internal/domain/models"
)

// OrderingService maintains the position invariant: within one
// (setlist, set_number) pair no two live items share a position, and
// positions stay totally ordered (gaps allowed) across any sequence of
// add/update/remove/reorder.
type OrderingService interface {
	// AddItem inserts a song. With an explicit position, peers of the same
	// set at or after it shift down by one; without one, the item appends
	// after the set's current maximum.
	AddItem(ctx context.Context, userID, setlistID string, req *AddItemRequest) (*models.SetlistItem, error)

	// UpdateItem changes override fields. Position is untouched unless the
	// item switches sets, in which case it appends after the target set's
	// current maximum.
	UpdateItem(ctx context.Context, userID, setlistID, itemID string, req *UpdateItemRequest) (*models.SetlistItem, error)

	// RemoveItem deletes the item without renumbering the remainder.
	RemoveItem(ctx context.Context, userID, setlistID, itemID string) error

	// Reorder atomically assigns positions 0..N-1 per set-number group in
	// the supplied order. Last write wins; any unknown ID fails the whole
	// call before a single position changes.
	Reorder(ctx context.Context, userID, setlistID string, req *ReorderRequest) ([]models.SetlistItem, error)

	ListItems(ctx context.Context, userID, setlistID string) ([]models.SetlistItem, error)
}

// AddItemRequest creates one item. A nil Position appends; a nil
// SetNumber defaults to set 1.
type AddItemRequest struct {
	SongID         string  `json:"song_id"`
	Position       *int    `json:"position,omitempty"`
	SetNumber      *int    `json:"set_number,omitempty"`
	CustomKey      *string `json:"custom_key,omitempty"`
	CustomTempo    *int    `json:"custom_tempo,omitempty"`
	CustomDuration *int    `json:"custom_duration,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// UpdateItemRequest carries override-field updates; nil fields are left
// untouched.
type UpdateItemRequest struct {
	CustomKey      *string `json:"custom_key,omitempty"`
	CustomTempo    *int    `json:"custom_tempo,omitempty"`
	CustomDuration *int    `json:"custom_duration,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	SetNumber      *int    `json:"set_number,omitempty"`
}

// ReorderRequest lists item IDs in their desired order. The list may
// cover a subset of the setlist's items; each referenced set-number
// group is renumbered independently.
type ReorderRequest struct {
	ItemIDs []string `json:"itemIds"`
}
