package models

import "time"

// Comment is one message in a setlist's discussion thread. A nil
// ParentCommentID marks a top-level comment; replies reference their
// parent within the same setlist.
type Comment struct {
	ID              string    `json:"id" db:"id"`
	SetlistID       string    `json:"setlist_id" db:"setlist_id"`
	UserID          string    `json:"user_id" db:"user_id"`
	Content         string    `json:"content" db:"content"`
	ParentCommentID *string   `json:"parent_comment_id,omitempty" db:"parent_comment_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`

	Replies []Comment `json:"replies,omitempty"`
}
