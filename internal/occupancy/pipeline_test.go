package occupancy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/farxc/fleet_occupancy/internal/logger"
	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/farxc/fleet_occupancy/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuns struct {
	nextID    int64
	inserted  []store.Run
	finished  []store.Run
	insertErr error
}

func (f *fakeRuns) InsertRun(ctx context.Context, run *store.Run) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	run.ID = f.nextID
	f.inserted = append(f.inserted, *run)
	return nil
}

func (f *fakeRuns) FinishRun(ctx context.Context, run *store.Run) error {
	f.finished = append(f.finished, *run)
	return nil
}

func (f *fakeRuns) GetLatest(ctx context.Context, limit int) ([]store.Run, error) {
	return f.finished, nil
}

type fakeSnapshots struct {
	records []types.SnapshotRecord
	err     error
}

func (f *fakeSnapshots) ReplaceSnapshotRecords(ctx context.Context, runID int64, records []types.SnapshotRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = records
	return nil
}

type fakeSummary struct {
	rows []types.SummaryRow
}

func (f *fakeSummary) ReplaceSummary(ctx context.Context, runID int64, rows []types.SummaryRow) error {
	f.rows = rows
	return nil
}

func (f *fakeSummary) GetSummary(ctx context.Context) ([]types.SummaryRow, error) {
	return f.rows, nil
}

func setupSource(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "01-03-2024.csv"), []byte(
		"Unidade,Grupo,Status,Placa\n"+
			"Rac Rec,A,Alugado,P1\n"+
			"Rac Rec,A,Disponível,P2\n"+
			"Rac For,B,Alugado,P3\n"+
			"Rac Outro,B,Alugado,P4\n"), 0o644))
	return src
}

func TestParseStage(t *testing.T) {
	for _, s := range []string{"ingest", "aggregate", "all"} {
		_, err := ParseStage(s)
		assert.NoError(t, err)
	}
	_, err := ParseStage("report")
	assert.Error(t, err)
}

func TestPipelineAllWithoutStore(t *testing.T) {
	out := t.TempDir()
	p := NewPipeline(Config{SourceDir: setupSource(t), OutputDir: out}, nil, logger.Discard())

	results, err := p.Run(context.Background(), StageAll)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Len(t, results[0].Ingest.Records, 3)
	rows := results[1].Aggregate.Rows
	require.Len(t, rows, 6)
	assert.Equal(t, types.SummaryRow{Unit: "Total Geral", GroupClass: "Básico", OccupancyPercent: 66.67, Rented: 2, Total: 3}, rows[4])

	assert.FileExists(t, filepath.Join(out, types.ConsolidatedFileName))
	assert.FileExists(t, filepath.Join(out, types.SummaryFileName))
}

func TestPipelineRecordsHistoryAndMirrors(t *testing.T) {
	runs := &fakeRuns{}
	snaps := &fakeSnapshots{}
	summary := &fakeSummary{}
	storage := &store.Storage{RunHistory: runs, Snapshots: snaps, Summary: summary}

	p := NewPipeline(Config{SourceDir: setupSource(t), OutputDir: t.TempDir()}, storage, logger.Discard())
	results, err := p.Run(context.Background(), StageAll)
	require.NoError(t, err)

	require.Len(t, runs.inserted, 2)
	assert.Equal(t, store.StatusInProgress, runs.inserted[0].Status)
	assert.Equal(t, store.StageIngest, runs.inserted[0].Stage)
	assert.Equal(t, store.StageAggregate, runs.inserted[1].Stage)

	require.Len(t, runs.finished, 2)
	assert.Equal(t, store.StatusSuccess, runs.finished[0].Status)
	assert.Equal(t, 4, runs.finished[0].RowsRead)
	assert.Equal(t, 3, runs.finished[0].RowsKept)
	assert.Len(t, runs.finished[0].ProcessedFiles, 1)

	assert.Equal(t, int64(1), results[0].RunID)
	assert.Len(t, snaps.records, 3)
	assert.Len(t, summary.rows, 6)
}

func TestPipelineAggregateWithoutIngestFails(t *testing.T) {
	runs := &fakeRuns{}
	storage := &store.Storage{RunHistory: runs, Snapshots: &fakeSnapshots{}, Summary: &fakeSummary{}}

	p := NewPipeline(Config{OutputDir: t.TempDir()}, storage, logger.Discard())
	_, err := p.Run(context.Background(), StageAggregate)

	var missing *types.MissingInputError
	require.True(t, errors.As(err, &missing))
	require.Len(t, runs.finished, 1)
	assert.Equal(t, store.StatusFailure, runs.finished[0].Status)
	assert.NotEmpty(t, runs.finished[0].Message)
}

func TestPipelineStoreFailuresAreNotFatal(t *testing.T) {
	storage := &store.Storage{
		RunHistory: &fakeRuns{},
		Snapshots:  &fakeSnapshots{err: errors.New("connection reset")},
		Summary:    &fakeSummary{},
	}
	p := NewPipeline(Config{SourceDir: setupSource(t), OutputDir: t.TempDir()}, storage, logger.Discard())
	_, err := p.Run(context.Background(), StageIngest)
	assert.NoError(t, err)

	storage.RunHistory = &fakeRuns{insertErr: errors.New("no db")}
	_, err = p.Run(context.Background(), StageAll)
	assert.NoError(t, err)
}
