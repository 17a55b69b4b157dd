package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the tables for the current environment prefix if they
// do not exist yet.
//
// The item uniqueness constraint (setlist_id, set_number, position) is
// DEFERRABLE INITIALLY DEFERRED: reorders and position shifts move rows
// through intermediate states inside one transaction, and the invariant
// is checked at commit.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id             uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				title          TEXT NOT NULL,
				description    TEXT,
				band_id        uuid,
				created_by     uuid NOT NULL,
				is_public      BOOLEAN NOT NULL DEFAULT FALSE,
				event_date     TIMESTAMPTZ,
				venue          TEXT,
				total_duration INT,
				created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
				deleted_at     TIMESTAMPTZ
			)
		`, tables.Setlists),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				title      TEXT NOT NULL,
				artist     TEXT,
				key        TEXT,
				tempo      INT,
				duration   INT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Songs),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				setlist_id      uuid NOT NULL REFERENCES %s(id),
				song_id         uuid NOT NULL REFERENCES %s(id),
				position        INT NOT NULL,
				set_number      INT NOT NULL DEFAULT 1,
				custom_key      TEXT,
				custom_tempo    INT CHECK (custom_tempo BETWEEN 0 AND 300),
				custom_duration INT CHECK (custom_duration >= 0),
				notes           TEXT,
				created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
				CONSTRAINT %s_position_key
					UNIQUE (setlist_id, set_number, position)
					DEFERRABLE INITIALLY DEFERRED
			)
		`, tables.Items, tables.Setlists, tables.Songs, tables.Items),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id             uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				setlist_id     uuid NOT NULL REFERENCES %s(id),
				version_number INT NOT NULL,
				snapshot       JSONB NOT NULL,
				created_by     uuid NOT NULL,
				notes          TEXT,
				created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (setlist_id, version_number)
			)
		`, tables.Versions, tables.Setlists),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id                uuid PRIMARY KEY DEFAULT gen_random_uuid(),
				setlist_id        uuid NOT NULL REFERENCES %s(id),
				user_id           uuid NOT NULL,
				content           TEXT NOT NULL,
				parent_comment_id uuid REFERENCES %s(id),
				created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Comments, tables.Setlists, tables.Comments),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				band_id    uuid NOT NULL,
				user_id    uuid NOT NULL,
				role       TEXT NOT NULL DEFAULT 'member',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (band_id, user_id)
			)
		`, tables.BandMembers),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_setlist_idx ON %s (setlist_id)
		`, tables.Items, tables.Items),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_setlist_idx ON %s (setlist_id)
		`, tables.Comments, tables.Comments),
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
