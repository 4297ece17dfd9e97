package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/confguard"
)

type database struct {
	pool      *pgxpool.Pool
	tableName string
}

// Connect establishes a connection pool to PostgreSQL.
// The table name should be validated before calling Connect.
func Connect(ctx context.Context, dsn, tableName string) (*database, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &database{
		pool:      pool,
		tableName: tableName,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate creates the run table and its indexes.
func (d *database) Migrate(ctx context.Context) error {
	if err := createRunTable(ctx, d.pool, d.tableName); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the run table matches the expected structure.
func (d *database) Validate(ctx context.Context) error {
	if err := validateTableSchema(ctx, d.pool, d.tableName, runTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", d.tableName, err)
	}
	return nil
}

// GetRepo returns the RunRepo for database operations.
func (d *database) GetRepo() confguard.RunRepo {
	return &Repo{pool: d.pool, tableName: d.tableName}
}

// Close closes the database connection pool.
func (d *database) Close() error {
	d.pool.Close()
	return nil
}
