package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RecordRun inserts a run and returns its ID.
// A UUIDv7 is generated when run.ID is empty. Recording the same ID twice
// is an error: runs are append-only.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("record run: generate id: %w", err)
		}
		run.ID = id.String()
	}

	switch run.Status {
	case StatusOK, StatusError:
	default:
		return "", fmt.Errorf("record run: invalid status %q", run.Status)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, input_path, output_path, started_at, reference_at, status, error_code, user_count, digest, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.InputPath,
		run.OutputPath,
		formatTime(run.StartedAt),
		formatTime(run.ReferenceAt),
		string(run.Status),
		run.ErrorCode,
		run.UserCount,
		run.Digest,
		run.Output,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	return run.ID, nil
}
