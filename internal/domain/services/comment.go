package services

import (
	"context"

	"bandstand/internal/domain/models"
)

// CommentService manages a setlist's discussion thread.
type CommentService interface {
	// AddComment creates a comment (optionally as a reply) and broadcasts
	// it to the setlist's room; the parent's author is notified of replies.
	AddComment(ctx context.Context, userID, setlistID string, req *AddCommentRequest) (*models.Comment, error)

	// ListComments returns top-level comments with replies nested one
	// level deep, oldest first.
	ListComments(ctx context.Context, userID, setlistID string) ([]models.Comment, error)

	// DeleteComment is allowed for the comment's author and the setlist's
	// creator.
	DeleteComment(ctx context.Context, userID, setlistID, commentID string) error
}

// AddCommentRequest creates one comment.
type AddCommentRequest struct {
	Content         string  `json:"content"`
	ParentCommentID *string `json:"parent_comment_id,omitempty"`
}
