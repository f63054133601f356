package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/farxc/fleet_occupancy/internal/db"
	"github.com/farxc/fleet_occupancy/internal/env"
	"github.com/farxc/fleet_occupancy/internal/logger"
	"github.com/farxc/fleet_occupancy/internal/occupancy"
	"github.com/farxc/fleet_occupancy/internal/occupancy/aggregate"
	"github.com/farxc/fleet_occupancy/internal/occupancy/files"
	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/farxc/fleet_occupancy/internal/store"
)

type config struct {
	sourceDir string
	outputDir string
	delimiter string
	encoding  string
	db        dbConfig
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

func loadConfig() config {
	return config{
		sourceDir: env.GetString("OCCUPANCY_SOURCE_DIR", "snapshots"),
		outputDir: env.GetString("OCCUPANCY_OUTPUT_DIR", "Base"),
		delimiter: env.GetString("SNAPSHOT_DELIMITER", ","),
		encoding:  env.GetString("SNAPSHOT_ENCODING", files.EncodingUTF8),
		db: dbConfig{
			addr:         env.GetString("DB_ADDR", ""),
			maxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 5),
			maxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 5),
			maxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
	}
}

func main() {
	const component = "Main"
	var appLogger = &logger.Logger{MinLevel: logger.LevelInfo}

	if err := env.LoadDotEnv(); err != nil {
		appLogger.Warn(component, "Failed to load .env: error=%v", err)
	}
	cfg := loadConfig()

	stagePtr := flag.String("stage", string(occupancy.StageAll), "Stage to run: ingest, aggregate, all")
	sourcePtr := flag.String("source", cfg.sourceDir, "Directory holding the daily snapshot CSV files")
	outputPtr := flag.String("output", cfg.outputDir, "Directory for "+types.ConsolidatedFileName+" and "+types.SummaryFileName)
	delimiterPtr := flag.String("delimiter", cfg.delimiter, "Snapshot CSV delimiter")
	encodingPtr := flag.String("encoding", cfg.encoding, "Snapshot encoding: utf-8, windows-1252")
	triggerPtr := flag.String("trigger", store.TriggerTypeManual, "Trigger source: manual, scheduled")
	logLevelPtr := flag.String("loglevel", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	appLogger.SetLogLevel(logger.ParseLevel(*logLevelPtr))

	stage, err := occupancy.ParseStage(*stagePtr)
	if err != nil {
		appLogger.Fatal(component, "Invalid stage: error=%v", err)
	}

	trigger, err := store.ParseTrigger(*triggerPtr)
	if err != nil {
		appLogger.Fatal(component, "Invalid trigger: error=%v", err)
	}

	delimiter := []rune(*delimiterPtr)
	if len(delimiter) != 1 {
		appLogger.Fatal(component, "Delimiter must be a single character: delimiter=%q", *delimiterPtr)
	}

	startingTime := time.Now()
	monitor := NewMonitor()
	monitor.Start(400*time.Millisecond, appLogger)
	appLogger.Info(component, "Application starting: stage=%s source=%s output=%s logLevel=%s", stage, *sourcePtr, *outputPtr, *logLevelPtr)

	ctx := context.Background()

	var storage *store.Storage
	if cfg.db.addr != "" {
		database, err := db.New(cfg.db.addr, cfg.db.maxOpenConns, cfg.db.maxIdleConns, cfg.db.maxIdleTime)
		if err != nil {
			appLogger.Warn(component, "Database unavailable, continuing without run history: error=%v", err)
		} else {
			defer database.Close()
			if err := store.EnsureSchema(ctx, database); err != nil {
				appLogger.Warn(component, "Schema setup failed, continuing without run history: error=%v", err)
			} else {
				storage = store.NewStorage(database)
				appLogger.Info(component, "Database connection pool established")
			}
		}
	}

	pipeline := occupancy.NewPipeline(occupancy.Config{
		SourceDir: *sourcePtr,
		OutputDir: *outputPtr,
		Read:      files.ReadOptions{Delimiter: delimiter[0], Encoding: *encodingPtr},
		Trigger:   trigger,
		Aggregate: aggregate.DefaultConfig(),
	}, storage, appLogger)

	_, err = pipeline.Run(ctx, stage)
	stats := monitor.Stop()
	if err != nil {
		var missing *types.MissingInputError
		if errors.As(err, &missing) {
			appLogger.Fatal(component, "Missing input: path=%s hint=%s", missing.Path, missing.Remedy)
		}
		appLogger.Fatal(component, "Pipeline failed: error=%v", err)
	}

	appLogger.Info(component, "Application completed successfully: duration=%.2f seconds peakMemoryMB=%d", time.Since(startingTime).Seconds(), stats.PeakMemoryMB)
}
