package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type RunHistoryStore struct {
	db *sqlx.DB
}

// InsertRun records the start of a stage and fills run.ID and run.StartedAt.
func (rh *RunHistoryStore) InsertRun(ctx context.Context, run *Run) error {
	query := `INSERT INTO run_history (
		stage,
		trigger_type,
		status,
		source_dir,
		processed_files
	) VALUES (
		:stage,
		:trigger_type,
		:status,
		:source_dir,
		:processed_files
	) RETURNING id, started_at`

	rows, err := rh.db.NamedQueryContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&run.ID, &run.StartedAt); err != nil {
			return fmt.Errorf("failed to scan run id: %w", err)
		}
	}
	return rows.Err()
}

// FinishRun stores the final status and counters of run.
func (rh *RunHistoryStore) FinishRun(ctx context.Context, run *Run) error {
	query := `UPDATE run_history SET
		status = :status,
		processed_files = :processed_files,
		rows_read = :rows_read,
		rows_kept = :rows_kept,
		message = :message,
		finished_at = now()
	WHERE id = :id`

	res, err := rh.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", run.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %d not found", run.ID)
	}
	return nil
}

func (rh *RunHistoryStore) GetLatest(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, stage, trigger_type, status, source_dir, processed_files,
		rows_read, rows_kept, message, started_at, finished_at
	FROM run_history
	ORDER BY started_at DESC, id DESC
	LIMIT $1`

	var runs []Run
	if err := rh.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
