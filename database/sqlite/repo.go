// Package sqlite implements the run history repo using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/confguard"
)

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type repo struct {
	db        *sql.DB
	tableName string
}

// NewRepo returns a RunRepo on db. The table must already exist.
func NewRepo(db *sql.DB, tableName string) (confguard.RunRepo, error) {
	if err := confguard.ValidateTableName(tableName); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}
	return &repo{db: db, tableName: tableName}, nil
}

func (r *repo) Record(ctx context.Context, run confguard.Run) error {
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	encoded, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("record: encode errors: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, path, valid, errors, checked_at)
		VALUES (?, ?, ?, ?, ?)`, quoteIdentifier(r.tableName))

	_, err = r.db.ExecContext(ctx, query,
		run.ID.String(), run.Path, run.Valid, string(encoded), run.CheckedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

func (r *repo) List(ctx context.Context, q confguard.RunQuery) ([]confguard.Run, error) {
	q = q.Normalize()

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, path, valid, errors, checked_at
		FROM %s
		WHERE (? = '' OR path = ?)
		ORDER BY checked_at DESC, id DESC
		LIMIT ?`, quoteIdentifier(r.tableName))

	rows, err := r.db.QueryContext(ctx, query, q.Path, q.Path, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := []confguard.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}
	return runs, nil
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (confguard.Run, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, path, valid, errors, checked_at
		FROM %s
		WHERE id = ?`, quoteIdentifier(r.tableName))

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return confguard.Run{}, confguard.ErrNotFound
		}
		return confguard.Run{}, fmt.Errorf("get: %w", err)
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (confguard.Run, error) {
	var (
		run       confguard.Run
		idStr     string
		errorsStr string
		checkedAt string
	)

	if err := s.Scan(&idStr, &run.Path, &run.Valid, &errorsStr, &checkedAt); err != nil {
		return confguard.Run{}, err
	}

	var err error
	run.ID, err = uuid.Parse(idStr)
	if err != nil {
		return confguard.Run{}, fmt.Errorf("parse uuid: %w", err)
	}

	if err := json.Unmarshal([]byte(errorsStr), &run.Errors); err != nil {
		return confguard.Run{}, fmt.Errorf("decode errors: %w", err)
	}

	run.CheckedAt, err = time.Parse(timeLayout, checkedAt)
	if err != nil {
		return confguard.Run{}, fmt.Errorf("parse checked_at: %w", err)
	}

	return run, nil
}
