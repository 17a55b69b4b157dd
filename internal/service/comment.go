package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"bandstand/internal/domain"
	"bandstand/internal/domain/models"
	"bandstand/internal/domain/repositories"
	"bandstand/internal/domain/services"
)

// commentService implements the CommentService interface.
type commentService struct {
	setlistAccess
	comments    repositories.CommentRepository
	broadcaster services.Broadcaster
	logger      *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(
	setlists repositories.SetlistRepository,
	comments repositories.CommentRepository,
	authorizer services.SetlistAuthorizer,
	broadcaster services.Broadcaster,
	logger *slog.Logger,
) services.CommentService {
	return &commentService{
		setlistAccess: setlistAccess{setlists: setlists, authorizer: authorizer},
		comments:      comments,
		broadcaster:   broadcaster,
		logger:        logger,
	}
}

func validateAddComment(req *services.AddCommentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Content, validation.Required),
		validation.Field(&req.ParentCommentID, is.UUID),
	)
}

// AddComment creates a comment, broadcasts it to the setlist's room and
// notifies the parent's author on a reply.
func (s *commentService) AddComment(ctx context.Context, userID, setlistID string, req *services.AddCommentRequest) (*models.Comment, error) {
	if err := validateAddComment(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.forRead(ctx, userID, setlistID); err != nil {
		return nil, err
	}

	var parent *models.Comment
	if req.ParentCommentID != nil {
		var err error
		parent, err = s.comments.GetByID(ctx, setlistID, *req.ParentCommentID)
		if err != nil {
			return nil, err
		}
	}

	comment := &models.Comment{
		SetlistID:       setlistID,
		UserID:          userID,
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.broadcaster.NewComment(setlistID, comment)
	if parent != nil && parent.UserID != userID {
		s.broadcaster.Notify(parent.UserID, map[string]interface{}{
			"type":       "comment-reply",
			"setlist_id": setlistID,
			"comment_id": comment.ID,
			"from":       userID,
		})
	}

	return comment, nil
}

// ListComments returns top-level comments with replies nested beneath
// their parents, oldest first.
func (s *commentService) ListComments(ctx context.Context, userID, setlistID string) ([]models.Comment, error) {
	if _, err := s.forRead(ctx, userID, setlistID); err != nil {
		return nil, err
	}

	all, err := s.comments.ListBySetlist(ctx, setlistID)
	if err != nil {
		return nil, err
	}

	// Collect the top level first, then attach replies by index; taking
	// pointers into thread while still appending would leave them on a
	// stale backing array.
	var thread []models.Comment
	for _, c := range all {
		if c.ParentCommentID == nil {
			thread = append(thread, c)
		}
	}
	index := make(map[string]int, len(thread))
	for i := range thread {
		index[thread[i].ID] = i
	}
	for _, c := range all {
		if c.ParentCommentID == nil {
			continue
		}
		if i, ok := index[*c.ParentCommentID]; ok {
			thread[i].Replies = append(thread[i].Replies, c)
		}
	}
	return thread, nil
}

// DeleteComment is allowed for the author and the setlist's creator.
func (s *commentService) DeleteComment(ctx context.Context, userID, setlistID, commentID string) error {
	setlist, err := s.setlists.GetByID(ctx, setlistID)
	if err != nil {
		return err
	}

	comment, err := s.comments.GetByID(ctx, setlistID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID && setlist.CreatedBy != userID {
		return &domain.ForbiddenError{Message: "cannot delete another user's comment"}
	}

	return s.comments.Delete(ctx, setlistID, commentID)
}
