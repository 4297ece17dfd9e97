// Package postgres implements the run history repo on PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/confguard"
)

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tableName string) (*Repo, error) {
	if err := confguard.ValidateTableName(tableName); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: tableName}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) table() string {
	return pgx.Identifier{r.tableName}.Sanitize()
}

func (r *Repo) Record(ctx context.Context, run confguard.Run) error {
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, path, valid, errors, checked_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.table())

	_, err := r.pool.Exec(ctx, query, run.ID, run.Path, run.Valid, errs, run.CheckedAt)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (confguard.Run, error) {
	query := fmt.Sprintf(`
		SELECT id, path, valid, errors, checked_at
		FROM %s
		WHERE id = $1
	`, r.table())

	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return confguard.Run{}, confguard.ErrNotFound
		}
		return confguard.Run{}, fmt.Errorf("get: %w", err)
	}
	return run, nil
}

func (r *Repo) List(ctx context.Context, q confguard.RunQuery) ([]confguard.Run, error) {
	q = q.Normalize()

	query := fmt.Sprintf(`
		SELECT id, path, valid, errors, checked_at
		FROM %s
		WHERE ($1 = '' OR path = $1)
		ORDER BY checked_at DESC, id DESC
		LIMIT $2
	`, r.table())

	rows, err := r.pool.Query(ctx, query, q.Path, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	runs := []confguard.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (confguard.Run, error) {
	var run confguard.Run
	if err := row.Scan(&run.ID, &run.Path, &run.Valid, &run.Errors, &run.CheckedAt); err != nil {
		return confguard.Run{}, err
	}
	if run.Errors == nil {
		run.Errors = []string{}
	}
	run.CheckedAt = run.CheckedAt.UTC()
	return run, nil
}
