package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bandstand/internal/domain"
	"bandstand/internal/domain/models"
	"bandstand/internal/domain/repositories"
)

// PostgresCommentRepository implements CommentRepository.
type PostgresCommentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(config *RepositoryConfig) repositories.CommentRepository {
	return &PostgresCommentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const commentColumns = `id, setlist_id, user_id, content, parent_comment_id, created_at, updated_at`

func scanComment(row pgx.Row, c *models.Comment) error {
	return row.Scan(
		&c.ID,
		&c.SetlistID,
		&c.UserID,
		&c.Content,
		&c.ParentCommentID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// Create inserts a comment.
func (r *PostgresCommentRepository) Create(ctx context.Context, c *models.Comment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (setlist_id, user_id, content, parent_comment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Comments)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		c.SetlistID,
		c.UserID,
		c.Content,
		c.ParentCommentID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("parent comment: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// GetByID returns the comment scoped to its setlist.
func (r *PostgresCommentRepository) GetByID(ctx context.Context, setlistID, commentID string) (*models.Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND setlist_id = $2
	`, commentColumns, r.tables.Comments)

	var c models.Comment
	executor := GetExecutor(ctx, r.pool)
	if err := scanComment(executor.QueryRow(ctx, query, commentID, setlistID), &c); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("comment %s: %w", commentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// ListBySetlist returns all comments of a setlist, oldest first.
func (r *PostgresCommentRepository) ListBySetlist(ctx context.Context, setlistID string) ([]models.Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE setlist_id = $1
		ORDER BY created_at
	`, commentColumns, r.tables.Comments)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, setlistID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Delete removes a comment and its direct replies.
func (r *PostgresCommentRepository) Delete(ctx context.Context, setlistID, commentID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE setlist_id = $1 AND (id = $2 OR parent_comment_id = $2)
	`, r.tables.Comments)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, setlistID, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comment %s: %w", commentID, domain.ErrNotFound)
	}
	return nil
}

// DeleteAllBySetlist removes the whole thread during a cascade delete.
func (r *PostgresCommentRepository) DeleteAllBySetlist(ctx context.Context, setlistID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE setlist_id = $1`, r.tables.Comments)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, setlistID); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	return nil
}
