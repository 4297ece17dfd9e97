package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/confguard"

	_ "modernc.org/sqlite" // SQLite driver
)

// database provides SQLite database operations.
type database struct {
	db        *sql.DB
	tableName string
}

// Connect opens a SQLite database.
// The table name should be validated before calling Connect.
func Connect(ctx context.Context, dsn, tableName string) (*database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// One connection keeps ":memory:" databases alive across calls and
	// serializes writers.
	db.SetMaxOpenConns(1)

	return &database{
		db:        db,
		tableName: tableName,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *database) Migrate(ctx context.Context) error {
	if err := createRunTable(ctx, d.db, d.tableName); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	if err := validateTableSchema(ctx, d.db, d.tableName, runTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", d.tableName, err)
	}
	return nil
}

// GetRepo returns the RunRepo for database operations.
func (d *database) GetRepo() confguard.RunRepo {
	return &repo{db: d.db, tableName: d.tableName}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}

// Drop removes the run table.
func (d *database) Drop(ctx context.Context) error {
	return dropTable(ctx, d.db, d.tableName)
}
