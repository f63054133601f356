package occupancy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/farxc/fleet_occupancy/internal/logger"
	"github.com/farxc/fleet_occupancy/internal/occupancy/aggregate"
	"github.com/farxc/fleet_occupancy/internal/occupancy/files"
	"github.com/farxc/fleet_occupancy/internal/occupancy/ingest"
	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/farxc/fleet_occupancy/internal/store"
)

type Stage string

const (
	StageIngest    Stage = "ingest"
	StageAggregate Stage = "aggregate"
	StageAll       Stage = "all"
)

func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageIngest, StageAggregate, StageAll:
		return Stage(s), nil
	}
	return "", fmt.Errorf("unknown stage %q (want ingest, aggregate or all)", s)
}

func (s Stage) steps() []Stage {
	if s == StageAll {
		return []Stage{StageIngest, StageAggregate}
	}
	return []Stage{s}
}

type Config struct {
	SourceDir string
	OutputDir string
	Read      files.ReadOptions
	Trigger   string
	Aggregate aggregate.Config
}

func (c Config) ConsolidatedPath() string {
	return filepath.Join(c.OutputDir, types.ConsolidatedFileName)
}

func (c Config) SummaryPath() string {
	return filepath.Join(c.OutputDir, types.SummaryFileName)
}

type StageResult struct {
	Stage     Stage
	RunID     int64
	Ingest    *ingest.Result
	Aggregate *aggregate.Result
}

// Pipeline runs the ingest and aggregate stages in order. The storage is
// optional; when set, every stage is recorded in the run history and its
// output is mirrored to the database. Storage failures are logged only.
type Pipeline struct {
	cfg       Config
	storage   *store.Storage
	appLogger *logger.Logger
}

func NewPipeline(cfg Config, storage *store.Storage, appLogger *logger.Logger) *Pipeline {
	if cfg.Trigger == "" {
		cfg.Trigger = store.TriggerTypeManual
	}
	if cfg.Aggregate.Classes == nil {
		cfg.Aggregate = aggregate.DefaultConfig()
	}
	return &Pipeline{cfg: cfg, storage: storage, appLogger: appLogger}
}

// Run executes stage and stops at the first failing step.
func (p *Pipeline) Run(ctx context.Context, stage Stage) ([]StageResult, error) {
	var results []StageResult
	for _, s := range stage.steps() {
		res, err := p.runStep(ctx, s)
		if err != nil {
			return results, fmt.Errorf("%s stage failed: %w", s, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (p *Pipeline) runStep(ctx context.Context, stage Stage) (StageResult, error) {
	const component = "Pipeline"
	p.appLogger.Info(component, "Stage starting: stage=%s trigger=%s", stage, p.cfg.Trigger)

	run := p.startRun(ctx, stage)
	res := StageResult{Stage: stage}
	if run != nil {
		res.RunID = run.ID
	}

	var err error
	switch stage {
	case StageIngest:
		res.Ingest, err = ingest.NewIngestor(ingest.Config{
			SourceDir:  p.cfg.SourceDir,
			OutputPath: p.cfg.ConsolidatedPath(),
			Read:       p.cfg.Read,
		}, p.appLogger).Run()
	case StageAggregate:
		res.Aggregate, err = aggregate.NewAggregator(p.cfg.Aggregate, p.appLogger).
			Run(p.cfg.ConsolidatedPath(), p.cfg.SummaryPath())
	default:
		err = fmt.Errorf("unknown stage %q", stage)
	}

	if err == nil && run != nil {
		p.mirror(ctx, run.ID, res)
	}
	p.finishRun(ctx, run, res, err)

	if err != nil {
		p.appLogger.Error(component, "Stage failed: stage=%s error=%v", stage, err)
		return res, err
	}
	p.appLogger.Info(component, "Stage completed: stage=%s", stage)
	return res, nil
}

func (p *Pipeline) startRun(ctx context.Context, stage Stage) *store.Run {
	const component = "RunHistory"
	if p.storage == nil {
		return nil
	}

	run := &store.Run{
		Stage:       string(stage),
		TriggerType: p.cfg.Trigger,
		Status:      store.StatusInProgress,
		SourceDir:   p.cfg.SourceDir,
	}
	if err := p.storage.RunHistory.InsertRun(ctx, run); err != nil {
		p.appLogger.Error(component, "Failed to create IN_PROGRESS record: stage=%s err=%v", stage, err)
		return nil
	}
	p.appLogger.Debug(component, "Run recorded: id=%d stage=%s", run.ID, stage)
	return run
}

func (p *Pipeline) finishRun(ctx context.Context, run *store.Run, res StageResult, stageErr error) {
	const component = "RunHistory"
	if run == nil {
		return
	}

	run.Status = store.StatusSuccess
	run.Message = ""
	if stageErr != nil {
		run.Status = store.StatusFailure
		run.Message = stageErr.Error()
	}
	if res.Ingest != nil {
		run.ProcessedFiles = res.Ingest.Files
		run.RowsRead = res.Ingest.RowsRead
		run.RowsKept = res.Ingest.RowsKept
	}
	if res.Aggregate != nil {
		run.RowsRead = res.Aggregate.Records
		run.RowsKept = len(res.Aggregate.Rows)
	}

	if err := p.storage.RunHistory.FinishRun(ctx, run); err != nil {
		p.appLogger.Error(component, "Failed to update final status: id=%d status=%s err=%v", run.ID, run.Status, err)
	}
}

func (p *Pipeline) mirror(ctx context.Context, runID int64, res StageResult) {
	const component = "Warehouse"

	if res.Ingest != nil {
		if err := p.storage.Snapshots.ReplaceSnapshotRecords(ctx, runID, res.Ingest.Records); err != nil {
			p.appLogger.Error(component, "Failed to mirror snapshot records: run=%d err=%v", runID, err)
		} else {
			p.appLogger.Info(component, "Snapshot records mirrored: run=%d rows=%d", runID, len(res.Ingest.Records))
		}
	}
	if res.Aggregate != nil {
		if err := p.storage.Summary.ReplaceSummary(ctx, runID, res.Aggregate.Rows); err != nil {
			p.appLogger.Error(component, "Failed to mirror summary: run=%d err=%v", runID, err)
		} else {
			p.appLogger.Info(component, "Summary mirrored: run=%d rows=%d", runID, len(res.Aggregate.Rows))
		}
	}
}
