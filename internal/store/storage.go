package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

type Storage struct {
	RunHistory interface {
		InsertRun(ctx context.Context, run *Run) error
		FinishRun(ctx context.Context, run *Run) error
		GetLatest(ctx context.Context, limit int) ([]Run, error)
	}

	Snapshots interface {
		ReplaceSnapshotRecords(ctx context.Context, runID int64, records []types.SnapshotRecord) error
	}

	Summary interface {
		ReplaceSummary(ctx context.Context, runID int64, rows []types.SummaryRow) error
		GetSummary(ctx context.Context) ([]types.SummaryRow, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		RunHistory: &RunHistoryStore{db: db},
		Snapshots:  &SnapshotStore{db: db},
		Summary:    &SummaryStore{db: db},
	}
}

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
