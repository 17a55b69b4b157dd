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

// PostgresSetlistRepository implements SetlistRepository.
type PostgresSetlistRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSetlistRepository creates a new setlist repository.
func NewSetlistRepository(config *RepositoryConfig) repositories.SetlistRepository {
	return &PostgresSetlistRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const setlistColumns = `id, title, description, band_id, created_by, is_public,
	event_date, venue, total_duration, created_at, updated_at`

func scanSetlist(row pgx.Row, s *models.Setlist) error {
	return row.Scan(
		&s.ID,
		&s.Title,
		&s.Description,
		&s.BandID,
		&s.CreatedBy,
		&s.IsPublic,
		&s.EventDate,
		&s.Venue,
		&s.TotalDuration,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

// Create inserts a setlist and fills in the generated ID and timestamps.
func (r *PostgresSetlistRepository) Create(ctx context.Context, s *models.Setlist) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, description, band_id, created_by, is_public, event_date, venue, total_duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Setlists)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		s.Title,
		s.Description,
		s.BandID,
		s.CreatedBy,
		s.IsPublic,
		s.EventDate,
		s.Venue,
		s.TotalDuration,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create setlist: %w", err)
	}
	return nil
}

// GetByID returns a live setlist without its items.
func (r *PostgresSetlistRepository) GetByID(ctx context.Context, id string) (*models.Setlist, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, setlistColumns, r.tables.Setlists)

	var s models.Setlist
	executor := GetExecutor(ctx, r.pool)
	if err := scanSetlist(executor.QueryRow(ctx, query, id), &s); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("setlist %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get setlist: %w", err)
	}
	return &s, nil
}

// ListForUser returns the setlists visible to a user: ones they created,
// ones belonging to their bands, and public ones.
func (r *PostgresSetlistRepository) ListForUser(ctx context.Context, userID string) ([]models.Setlist, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE deleted_at IS NULL
		  AND (created_by = $1
			OR is_public
			OR band_id IN (SELECT band_id FROM %s WHERE user_id = $1))
		ORDER BY updated_at DESC
	`, setlistColumns, r.tables.Setlists, r.tables.BandMembers)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list setlists: %w", err)
	}
	defer rows.Close()

	var setlists []models.Setlist
	for rows.Next() {
		var s models.Setlist
		if err := scanSetlist(rows, &s); err != nil {
			return nil, fmt.Errorf("scan setlist: %w", err)
		}
		setlists = append(setlists, s)
	}
	return setlists, rows.Err()
}

// Update persists metadata fields.
func (r *PostgresSetlistRepository) Update(ctx context.Context, s *models.Setlist) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, description = $3, is_public = $4, event_date = $5,
			venue = $6, total_duration = $7, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`, r.tables.Setlists)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		s.ID,
		s.Title,
		s.Description,
		s.IsPublic,
		s.EventDate,
		s.Venue,
		s.TotalDuration,
	).Scan(&s.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("setlist %s: %w", s.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update setlist: %w", err)
	}
	return nil
}

// SoftDelete tombstones the setlist row.
func (r *PostgresSetlistRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Setlists)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete setlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("setlist %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// PostgresMembershipRepository implements MembershipRepository over the
// band membership table owned by the band service.
type PostgresMembershipRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMembershipRepository creates a new membership repository.
func NewMembershipRepository(config *RepositoryConfig) repositories.MembershipRepository {
	return &PostgresMembershipRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// IsMember reports whether the user belongs to the band.
func (r *PostgresMembershipRepository) IsMember(ctx context.Context, bandID, userID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE band_id = $1 AND user_id = $2)
	`, r.tables.BandMembers)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, bandID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check band membership: %w", err)
	}
	return exists, nil
}
