package store

import (
	"context"
	"fmt"

	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/jmoiron/sqlx"
)

type SummaryStore struct {
	db *sqlx.DB
}

type summaryRecord struct {
	RunID    int64 `db:"run_id"`
	Position int   `db:"position"`
	types.SummaryRow
}

func (s *SummaryStore) ReplaceSummary(ctx context.Context, runID int64, rows []types.SummaryRow) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM occupancy_summary`); err != nil {
		return fmt.Errorf("failed to clear summary: %w", err)
	}

	query := `INSERT INTO occupancy_summary (
		run_id,
		position,
		unit,
		group_class,
		occupancy_percent,
		rented,
		total
	) VALUES (
		:run_id,
		:position,
		:unit,
		:group_class,
		:occupancy_percent,
		:rented,
		:total
	)`

	for i, r := range rows {
		rec := summaryRecord{RunID: runID, Position: i, SummaryRow: r}
		if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
			return fmt.Errorf("failed to insert summary row %s/%s: %w", r.Unit, r.GroupClass, err)
		}
	}

	return tx.Commit()
}

func (s *SummaryStore) GetSummary(ctx context.Context) ([]types.SummaryRow, error) {
	query := `SELECT unit, group_class, occupancy_percent, rented, total
	FROM occupancy_summary
	ORDER BY position`

	var rows []types.SummaryRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	return rows, nil
}
