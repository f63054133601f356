package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type SnapshotStore struct {
	db *sqlx.DB
}

var snapshotColumns = []string{"run_id", "unit", "group_code", "status", "plate", "origin", "snapshot_date", "extra"}

// ReplaceSnapshotRecords swaps the table content for records in one
// transaction, bulk loading through COPY.
func (ss *SnapshotStore) ReplaceSnapshotRecords(ctx context.Context, runID int64, records []types.SnapshotRecord) error {
	tx, err := ss.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_records`); err != nil {
		return fmt.Errorf("failed to clear snapshot records: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, pq.CopyIn("snapshot_records", snapshotColumns...))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		extra := "{}"
		if len(r.Extra) > 0 {
			b, err := json.Marshal(r.Extra)
			if err != nil {
				return err
			}
			extra = string(b)
		}

		var snapshotDate interface{}
		if t, err := time.Parse(types.OriginLayout, r.Origin); err == nil {
			snapshotDate = t
		}

		if _, err := stmt.ExecContext(ctx, runID, r.Unit, r.Group, r.Status, r.Plate, r.Origin, snapshotDate, extra); err != nil {
			return fmt.Errorf("failed to copy record plate=%s: %w", r.Plate, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to flush copy: %w", err)
	}

	return tx.Commit()
}
