package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func createRunTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexCheckedAt := pgx.Identifier{fmt.Sprintf("idx_%s_checked_at", tableName)}.Sanitize()
	indexPath := pgx.Identifier{fmt.Sprintf("idx_%s_path", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			path TEXT NOT NULL,
			valid BOOLEAN NOT NULL,
			errors JSONB NOT NULL DEFAULT '[]'::jsonb,
			checked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (checked_at DESC);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (path, checked_at DESC);
	`,
		quotedTable,
		indexCheckedAt, quotedTable,
		indexPath, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create run table: %w", err)
	}
	return nil
}
