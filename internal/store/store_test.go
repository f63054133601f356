package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestInsertRun(t *testing.T) {
	db, mock := newMockDB(t)
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO run_history")).
		WithArgs(StageIngest, TriggerTypeManual, StatusInProgress, "snapshots", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "started_at"}).AddRow(7, started))

	run := &Run{Stage: StageIngest, TriggerType: TriggerTypeManual, Status: StatusInProgress, SourceDir: "snapshots"}
	require.NoError(t, NewStorage(db).RunHistory.InsertRun(context.Background(), run))

	assert.Equal(t, int64(7), run.ID)
	assert.Equal(t, started, run.StartedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishRun(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStorage(db).RunHistory

	mock.ExpectExec(regexp.QuoteMeta("UPDATE run_history SET")).
		WithArgs(StatusSuccess, sqlmock.AnyArg(), 10, 8, "", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE run_history SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	run := &Run{ID: 7, Status: StatusSuccess, RowsRead: 10, RowsKept: 8, ProcessedFiles: []string{"a.csv"}}
	require.NoError(t, store.FinishRun(context.Background(), run))

	run.ID = 99
	assert.Error(t, store.FinishRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLatest(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "stage", "trigger_type", "status", "source_dir", "processed_files",
		"rows_read", "rows_kept", "message", "started_at", "finished_at"}).
		AddRow(2, StageAggregate, TriggerTypeManual, StatusSuccess, "", "{}", 0, 6, "", now, now).
		AddRow(1, StageIngest, TriggerTypeManual, StatusFailure, "snapshots", "{a.csv,b.csv}", 5, 4, "boom", now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM run_history")).WithArgs(5).WillReturnRows(rows)

	runs, err := NewStorage(db).RunHistory.GetLatest(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, StageAggregate, runs[0].Stage)
	assert.True(t, runs[0].FinishedAt.Valid)
	assert.Equal(t, []string{"a.csv", "b.csv"}, []string(runs[1].ProcessedFiles))
	assert.False(t, runs[1].FinishedAt.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceSnapshotRecords(t *testing.T) {
	db, mock := newMockDB(t)

	records := []types.SnapshotRecord{
		{Unit: "Rac Rec", Group: "A", Status: "Alugado", Plate: "P1", Origin: "01/03/2024", Extra: map[string]string{"Km": "10"}},
		{Unit: "Rac For", Group: "B", Status: "Disponível", Plate: "P2", Origin: ""},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM snapshot_records")).WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare("COPY")
	prep.ExpectExec().
		WithArgs(int64(1), "Rac Rec", "A", "Alugado", "P1", "01/03/2024", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), `{"Km":"10"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(int64(1), "Rac For", "B", "Disponível", "P2", "", nil, "{}").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, NewStorage(db).Snapshots.ReplaceSnapshotRecords(context.Background(), 1, records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceSummaryRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)

	rows := []types.SummaryRow{
		{Unit: "Rac Rec", GroupClass: "Básico", OccupancyPercent: 50, Rented: 1, Total: 2},
		{Unit: "Rac Rec", GroupClass: "Especial"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM occupancy_summary")).WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO occupancy_summary")).
		WithArgs(int64(3), 0, "Rac Rec", "Básico", 50.0, 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO occupancy_summary")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := NewStorage(db).Summary.ReplaceSummary(context.Background(), 3, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSummary(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM occupancy_summary")).
		WillReturnRows(sqlmock.NewRows([]string{"unit", "group_class", "occupancy_percent", "rented", "total"}).
			AddRow("Total Geral", "Básico", 66.67, 2, 3))

	rows, err := NewStorage(db).Summary.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.SummaryRow{{Unit: "Total Geral", GroupClass: "Básico", OccupancyPercent: 66.67, Rented: 2, Total: 3}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS run_history")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseTrigger(t *testing.T) {
	for _, s := range []string{TriggerTypeManual, TriggerTypeScheduled} {
		got, err := ParseTrigger(s)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseTrigger("cron")
	assert.Error(t, err)
}
