package models

import "time"

// SetlistVersion is an immutable, numbered snapshot of a setlist's item
// list. Version numbers start at 1 and are unique per setlist.
type SetlistVersion struct {
	ID            string  `json:"id" db:"id"`
	SetlistID     string  `json:"setlist_id" db:"setlist_id"`
	VersionNumber int     `json:"version_number" db:"version_number"`
	CreatedBy     string  `json:"created_by" db:"created_by"`
	Notes         *string `json:"notes,omitempty" db:"notes"`
	// Snapshot is omitted from list responses; only GetVersion returns it.
	Snapshot  Snapshot  `json:"snapshot,omitempty" db:"snapshot"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Snapshot is the serialized item list at capture time, stored as an
// opaque JSONB payload and ordered by (set_number, position).
type Snapshot []SnapshotItem

// SnapshotItem preserves everything needed to recreate a live item.
type SnapshotItem struct {
	SongID         string  `json:"song_id"`
	Position       int     `json:"position"`
	SetNumber      int     `json:"set_number"`
	CustomKey      *string `json:"custom_key,omitempty"`
	CustomTempo    *int    `json:"custom_tempo,omitempty"`
	CustomDuration *int    `json:"custom_duration,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// SnapshotOf captures the given live items.
func SnapshotOf(items []SetlistItem) Snapshot {
	snap := make(Snapshot, 0, len(items))
	for _, it := range items {
		snap = append(snap, SnapshotItem{
			SongID:         it.SongID,
			Position:       it.Position,
			SetNumber:      it.SetNumber,
			CustomKey:      it.CustomKey,
			CustomTempo:    it.CustomTempo,
			CustomDuration: it.CustomDuration,
			Notes:          it.Notes,
		})
	}
	return snap
}
