package models

import "time"

// Setlist is the root aggregate: an ordered collection of song
// performances, optionally tied to a band and an event.
type Setlist struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	BandID      *string    `json:"band_id" db:"band_id"` // NULL = personal setlist
	CreatedBy   string     `json:"created_by" db:"created_by"`
	IsPublic    bool       `json:"is_public" db:"is_public"`
	EventDate   *time.Time `json:"event_date,omitempty" db:"event_date"`
	Venue       *string    `json:"venue,omitempty" db:"venue"`
	// TotalDuration is denormalized and independently settable; it is not
	// recomputed from item durations.
	TotalDuration *int      `json:"total_duration,omitempty" db:"total_duration"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	// Items is populated on detail reads, ordered by (set_number, position).
	Items []SetlistItem `json:"items,omitempty"`
}

// SetlistItem is one song occurrence within one setlist, carrying the
// per-performance overrides. Within a (setlist, set_number) pair positions
// are unique; they are totally ordered but not necessarily contiguous.
type SetlistItem struct {
	ID             string    `json:"id" db:"id"`
	SetlistID      string    `json:"setlist_id" db:"setlist_id"`
	SongID         string    `json:"song_id" db:"song_id"`
	Position       int       `json:"position" db:"position"`
	SetNumber      int       `json:"set_number" db:"set_number"`
	CustomKey      *string   `json:"custom_key,omitempty" db:"custom_key"`
	CustomTempo    *int      `json:"custom_tempo,omitempty" db:"custom_tempo"`
	CustomDuration *int      `json:"custom_duration,omitempty" db:"custom_duration"`
	Notes          *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// PositionAssignment pairs an item with its target position inside a
// reorder transaction.
type PositionAssignment struct {
	ItemID   string
	Position int
}
