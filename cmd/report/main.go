package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/farxc/fleet_occupancy/internal/db"
	"github.com/farxc/fleet_occupancy/internal/env"
	"github.com/farxc/fleet_occupancy/internal/logger"
	"github.com/farxc/fleet_occupancy/internal/occupancy/aggregate"
	"github.com/farxc/fleet_occupancy/internal/occupancy/dashboard"
	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/farxc/fleet_occupancy/internal/store"
)

var errDBAddrUnset = errors.New("DB_ADDR not set")

func main() {
	const component = "Report"
	var appLogger = &logger.Logger{MinLevel: logger.LevelInfo}

	if err := env.LoadDotEnv(); err != nil {
		appLogger.Warn(component, "Failed to load .env: error=%v", err)
	}

	outputDirPtr := flag.String("output", env.GetString("OCCUPANCY_OUTPUT_DIR", "Base"), "Directory holding the pipeline output files")
	unitPtr := flag.String("unit", dashboard.FilterAll, "Unit filter for the charts: Todos, Rac Rec, Rac For")
	formatPtr := flag.String("format", "text", "Output format: text, json")
	outPtr := flag.String("out", "", "Write the report to this file instead of stdout")
	fromDBPtr := flag.Bool("from-db", false, "Read the summary rows from the occupancy_summary table (requires DB_ADDR)")
	runsPtr := flag.Int("runs", 0, "Include the latest N pipeline runs (requires DB_ADDR)")
	logLevelPtr := flag.String("loglevel", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	appLogger.SetLogLevel(logger.ParseLevel(*logLevelPtr))

	if *formatPtr != "text" && *formatPtr != "json" {
		appLogger.Fatal(component, "Invalid format: format=%s", *formatPtr)
	}

	fail := func(msg string, err error) {
		if *formatPtr == "json" {
			dashboard.RenderJSONError(os.Stdout, err)
		}
		appLogger.Fatal(component, "%s: error=%v", msg, err)
	}

	ctx := context.Background()
	var storage *store.Storage
	if *fromDBPtr || *runsPtr > 0 {
		s, closeDB, err := openStorage()
		if err != nil {
			if *fromDBPtr {
				fail("Database unavailable", err)
			}
			appLogger.Warn(component, "Database unavailable, skipping run history: error=%v", err)
		} else {
			defer closeDB()
			storage = s
		}
	}

	consolidated := filepath.Join(*outputDirPtr, types.ConsolidatedFileName)
	var report *dashboard.Report
	var err error
	if *fromDBPtr {
		summary, serr := storage.Summary.GetSummary(ctx)
		if serr != nil {
			fail("Failed to read summary from database", serr)
		}
		report, err = dashboard.LoadWithSummary(consolidated, summary, *unitPtr, aggregate.DefaultConfig())
	} else {
		report, err = dashboard.Load(consolidated, filepath.Join(*outputDirPtr, types.SummaryFileName), *unitPtr, aggregate.DefaultConfig())
	}
	if err != nil {
		fail("Failed to build report", err)
	}
	for _, w := range report.Warnings {
		appLogger.Warn(component, "Erro ao recuperar KPI do arquivo resumo: %s", w)
	}

	if *runsPtr > 0 && storage != nil {
		runs, err := storage.RunHistory.GetLatest(ctx, *runsPtr)
		if err != nil {
			appLogger.Warn(component, "Failed to list runs: error=%v", err)
		}
		report.Runs = runs
	}

	var out io.Writer = os.Stdout
	if *outPtr != "" {
		f, err := os.Create(*outPtr)
		if err != nil {
			appLogger.Fatal(component, "error creating file: %v", err)
		}
		defer f.Close()
		out = f
	}

	if *formatPtr == "json" {
		err = dashboard.RenderJSON(out, report)
	} else {
		err = dashboard.RenderText(out, report)
	}
	if err != nil {
		appLogger.Fatal(component, "Failed to render report: error=%v", err)
	}
}

func openStorage() (*store.Storage, func(), error) {
	addr := env.GetString("DB_ADDR", "")
	if addr == "" {
		return nil, nil, errDBAddrUnset
	}
	database, err := db.New(addr,
		env.GetInt("DB_MAX_OPEN_CONNS", 5),
		env.GetInt("DB_MAX_IDLE_CONNS", 5),
		env.GetString("DB_MAX_IDLE_TIME", "15m"))
	if err != nil {
		return nil, nil, err
	}
	return store.NewStorage(database), func() { database.Close() }, nil
}
