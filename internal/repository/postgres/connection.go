package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"bandstand/internal/domain/repositories"
)

// RepositoryConfig holds the shared collaborators for repository
// implementations.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds the environment-prefixed table names.
type TableNames struct {
	Setlists    string
	Items       string
	Versions    string
	Comments    string
	Songs       string
	BandMembers string
}

// NewTableNames creates table names with the given prefix (dev_, test_,
// prod_), so environments can share one database.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Setlists:    fmt.Sprintf("%ssetlists", prefix),
		Items:       fmt.Sprintf("%ssetlist_items", prefix),
		Versions:    fmt.Sprintf("%ssetlist_versions", prefix),
		Comments:    fmt.Sprintf("%scomments", prefix),
		Songs:       fmt.Sprintf("%ssongs", prefix),
		BandMembers: fmt.Sprintf("%sband_members", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool and verifies the
// database is reachable. Table names are interpolated before statements
// reach the server, so each environment caches its own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction carried by the context when one is
// present, the pool otherwise. Repositories call this on every query so
// they automatically join the caller's transaction.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
