package models

import "time"

// Song is a catalog entry referenced by setlist items. The catalog is
// owned elsewhere; items only point at it.
type Song struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Artist    *string   `json:"artist,omitempty" db:"artist"`
	Key       *string   `json:"key,omitempty" db:"key"`
	Tempo     *int      `json:"tempo,omitempty" db:"tempo"`
	Duration  *int      `json:"duration,omitempty" db:"duration"` // seconds
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
