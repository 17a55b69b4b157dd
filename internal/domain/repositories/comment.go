package repositories

import (
	"context"

	"bandstand/internal/domain/models"
)

// CommentRepository persists the discussion thread attached to a setlist.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error

	GetByID(ctx context.Context, setlistID, commentID string) (*models.Comment, error)

	// ListBySetlist returns comments ordered by creation time ascending.
	ListBySetlist(ctx context.Context, setlistID string) ([]models.Comment, error)

	Delete(ctx context.Context, setlistID, commentID string) error

	DeleteAllBySetlist(ctx context.Context, setlistID string) error
}
