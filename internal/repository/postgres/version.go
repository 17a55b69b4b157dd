package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"bandstand/internal/domain"
	"bandstand/internal/domain/models"
	"bandstand/internal/domain/repositories"
)

// PostgresVersionRepository implements VersionRepository. Snapshots are
// stored as JSONB; pgx encodes and decodes the Snapshot type directly.
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository.
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a version. A duplicate (setlist_id, version_number)
// surfaces as a ConflictError so the caller can retry with the next
// number.
func (r *PostgresVersionRepository) Create(ctx context.Context, v *models.SetlistVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (setlist_id, version_number, snapshot, created_by, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		v.SetlistID,
		v.VersionNumber,
		v.Snapshot,
		v.CreatedBy,
		v.Notes,
	).Scan(&v.ID, &v.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("version %d already exists for setlist %s", v.VersionNumber, v.SetlistID),
				ResourceType: "version",
			}
		}
		return fmt.Errorf("create version: %w", err)
	}
	return nil
}

// ListBySetlist returns versions ascending by number, payloads excluded.
func (r *PostgresVersionRepository) ListBySetlist(ctx context.Context, setlistID string) ([]models.SetlistVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, setlist_id, version_number, created_by, notes, created_at
		FROM %s
		WHERE setlist_id = $1
		ORDER BY version_number
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, setlistID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.SetlistVersion
	for rows.Next() {
		var v models.SetlistVersion
		if err := rows.Scan(&v.ID, &v.SetlistID, &v.VersionNumber, &v.CreatedBy, &v.Notes, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// GetByID returns the full version including its snapshot payload.
func (r *PostgresVersionRepository) GetByID(ctx context.Context, setlistID, versionID string) (*models.SetlistVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, setlist_id, version_number, snapshot, created_by, notes, created_at
		FROM %s
		WHERE id = $1 AND setlist_id = $2
	`, r.tables.Versions)

	var v models.SetlistVersion
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, versionID, setlistID).Scan(
		&v.ID,
		&v.SetlistID,
		&v.VersionNumber,
		&v.Snapshot,
		&v.CreatedBy,
		&v.Notes,
		&v.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("version %s: %w", versionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}
	return &v, nil
}

// MaxVersionNumber returns 0 when the setlist has no versions.
func (r *PostgresVersionRepository) MaxVersionNumber(ctx context.Context, setlistID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(version_number), 0) FROM %s WHERE setlist_id = $1
	`, r.tables.Versions)

	var max int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, setlistID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max version number: %w", err)
	}
	return max, nil
}

// DeleteAllBySetlist removes all versions during a cascade delete.
func (r *PostgresVersionRepository) DeleteAllBySetlist(ctx context.Context, setlistID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE setlist_id = $1`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, setlistID); err != nil {
		return fmt.Errorf("delete versions: %w", err)
	}
	return nil
}
