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

// PostgresItemRepository implements ItemRepository.
type PostgresItemRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewItemRepository creates a new item repository.
func NewItemRepository(config *RepositoryConfig) repositories.ItemRepository {
	return &PostgresItemRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const itemColumns = `id, setlist_id, song_id, position, set_number,
	custom_key, custom_tempo, custom_duration, notes, created_at, updated_at`

func scanItem(row pgx.Row, it *models.SetlistItem) error {
	return row.Scan(
		&it.ID,
		&it.SetlistID,
		&it.SongID,
		&it.Position,
		&it.SetNumber,
		&it.CustomKey,
		&it.CustomTempo,
		&it.CustomDuration,
		&it.Notes,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
}

// Create inserts an item at the position already resolved by the
// ordering engine. A duplicate position surfaces as a ConflictError.
func (r *PostgresItemRepository) Create(ctx context.Context, it *models.SetlistItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (setlist_id, song_id, position, set_number, custom_key, custom_tempo, custom_duration, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		it.SetlistID,
		it.SongID,
		it.Position,
		it.SetNumber,
		it.CustomKey,
		it.CustomTempo,
		it.CustomDuration,
		it.Notes,
	).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("position %d is already taken in set %d", it.Position, it.SetNumber),
				ResourceType: "item",
			}
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// GetByID returns the item scoped to its setlist.
func (r *PostgresItemRepository) GetByID(ctx context.Context, setlistID, itemID string) (*models.SetlistItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND setlist_id = $2
	`, itemColumns, r.tables.Items)

	var it models.SetlistItem
	executor := GetExecutor(ctx, r.pool)
	if err := scanItem(executor.QueryRow(ctx, query, itemID, setlistID), &it); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

// ListBySetlist returns items ordered by (set_number, position). Readers
// sort by position and never assume contiguity.
func (r *PostgresItemRepository) ListBySetlist(ctx context.Context, setlistID string) ([]models.SetlistItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE setlist_id = $1
		ORDER BY set_number, position
	`, itemColumns, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, setlistID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []models.SetlistItem
	for rows.Next() {
		var it models.SetlistItem
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update persists override fields and set_number; position is excluded.
func (r *PostgresItemRepository) Update(ctx context.Context, it *models.SetlistItem) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET custom_key = $3, custom_tempo = $4, custom_duration = $5,
			notes = $6, set_number = $7, updated_at = now()
		WHERE id = $1 AND setlist_id = $2
		RETURNING updated_at
	`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		it.ID,
		it.SetlistID,
		it.CustomKey,
		it.CustomTempo,
		it.CustomDuration,
		it.Notes,
		it.SetNumber,
	).Scan(&it.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("item %s: %w", it.ID, domain.ErrNotFound)
		}
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("position %d is already taken in set %d", it.Position, it.SetNumber),
				ResourceType: "item",
				ResourceID:   it.ID,
			}
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Delete removes the item; remaining positions keep their gaps.
func (r *PostgresItemRepository) Delete(ctx context.Context, setlistID, itemID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1 AND setlist_id = $2
	`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, itemID, setlistID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}
	return nil
}

// DeleteAllBySetlist clears the live item set (restore, cascade delete).
func (r *PostgresItemRepository) DeleteAllBySetlist(ctx context.Context, setlistID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE setlist_id = $1`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, setlistID); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	return nil
}

// MaxPosition returns the highest position within (setlist, set).
func (r *PostgresItemRepository) MaxPosition(ctx context.Context, setlistID string, setNumber int) (int, bool, error) {
	query := fmt.Sprintf(`
		SELECT MAX(position) FROM %s
		WHERE setlist_id = $1 AND set_number = $2
	`, r.tables.Items)

	var max *int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, setlistID, setNumber).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("max position: %w", err)
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

// ShiftPositions opens a slot by moving items at or after fromPosition
// down by one. The deferred uniqueness constraint tolerates the
// intermediate overlap until commit.
func (r *PostgresItemRepository) ShiftPositions(ctx context.Context, setlistID string, setNumber, fromPosition int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET position = position + 1, updated_at = now()
		WHERE setlist_id = $1 AND set_number = $2 AND position >= $3
	`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, setlistID, setNumber, fromPosition); err != nil {
		return fmt.Errorf("shift positions: %w", err)
	}
	return nil
}

// UpdatePositions applies a computed reorder in a single statement.
func (r *PostgresItemRepository) UpdatePositions(ctx context.Context, setlistID string, assignments []models.PositionAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	ids := make([]string, len(assignments))
	positions := make([]int, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ItemID
		positions[i] = a.Position
	}

	query := fmt.Sprintf(`
		UPDATE %s AS it
		SET position = v.position, updated_at = now()
		FROM (SELECT unnest($2::uuid[]) AS id, unnest($3::int[]) AS position) AS v
		WHERE it.id = v.id AND it.setlist_id = $1
	`, r.tables.Items)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, setlistID, ids, positions)
	if err != nil {
		return fmt.Errorf("update positions: %w", err)
	}
	if int(tag.RowsAffected()) != len(assignments) {
		return fmt.Errorf("update positions: expected %d rows, updated %d: %w",
			len(assignments), tag.RowsAffected(), domain.ErrValidation)
	}
	return nil
}

// PostgresSongRepository implements the catalog existence check.
type PostgresSongRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSongRepository creates a new song repository.
func NewSongRepository(config *RepositoryConfig) repositories.SongRepository {
	return &PostgresSongRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Exists reports whether the song is present in the catalog.
func (r *PostgresSongRepository) Exists(ctx context.Context, songID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, r.tables.Songs)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, songID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check song: %w", err)
	}
	return exists, nil
}

// GetByIDs returns catalog entries keyed by ID; missing songs are absent.
func (r *PostgresSongRepository) GetByIDs(ctx context.Context, songIDs []string) (map[string]models.Song, error) {
	songs := make(map[string]models.Song, len(songIDs))
	if len(songIDs) == 0 {
		return songs, nil
	}

	query := fmt.Sprintf(`
		SELECT id, title, artist, key, tempo, duration, created_at, updated_at
		FROM %s
		WHERE id = ANY($1::uuid[])
	`, r.tables.Songs)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, songIDs)
	if err != nil {
		return nil, fmt.Errorf("get songs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Song
		if err := rows.Scan(&s.ID, &s.Title, &s.Artist, &s.Key, &s.Tempo, &s.Duration, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs[s.ID] = s
	}
	return songs, rows.Err()
}
