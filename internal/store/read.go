package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned by GetRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

const selectRun = `
	SELECT id, input_path, output_path, started_at, reference_at, status, error_code, user_count, digest, output
	FROM runs
`

// GetRun returns the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, most recent first.
// A limit <= 0 returns all runs.
//
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx,
		selectRun+` ORDER BY started_at DESC, id COLLATE BINARY DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run                    Run
		startedAt, referenceAt string
		status                 string
	)
	err := row.Scan(
		&run.ID,
		&run.InputPath,
		&run.OutputPath,
		&startedAt,
		&referenceAt,
		&status,
		&run.ErrorCode,
		&run.UserCount,
		&run.Digest,
		&run.Output,
	)
	if err != nil {
		return Run{}, err
	}

	run.Status = RunStatus(status)
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return Run{}, fmt.Errorf("scan run %s: started_at: %w", run.ID, err)
	}
	if run.ReferenceAt, err = parseTime(referenceAt); err != nil {
		return Run{}, fmt.Errorf("scan run %s: reference_at: %w", run.ID, err)
	}

	return run, nil
}
