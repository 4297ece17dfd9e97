package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/confguard"
	"github.com/sagarc03/confguard/database/postgres"
	"github.com/sagarc03/confguard/database/sqlite"
)

// Config holds the configuration for connecting to a history backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string
	// DSN is the data source name (connection string)
	DSN string
	// Table is the name of the run history table
	Table string
}

// Database is a connected history backend.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	GetRepo() confguard.RunRepo
	Close() error
}

// Connect opens a connection to the configured backend without touching the schema.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := confguard.ValidateTableName(cfg.Table); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		return sqlite.Connect(ctx, cfg.DSN, cfg.Table)
	case "postgres":
		return postgres.Connect(ctx, cfg.DSN, cfg.Table)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Open connects, pings, migrates and validates the backend and returns its
// RunRepo. The returned cleanup function closes the connection.
func Open(ctx context.Context, cfg Config) (confguard.RunRepo, func(), error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", cfg.Type, err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate %s: %w", cfg.Type, err)
	}

	if err := db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("validate %s schema: %w", cfg.Type, err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db.GetRepo(), cleanup, nil
}
