package aggregate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/farxc/fleet_occupancy/internal/logger"
	"github.com/farxc/fleet_occupancy/internal/occupancy/convert"
	"github.com/farxc/fleet_occupancy/internal/occupancy/files"
	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// RemedyRunIngest is the hint attached to a missing consolidated file.
const RemedyRunIngest = "run the ingest stage first"

// RemedyRunAggregate is the hint attached to a missing summary file.
const RemedyRunAggregate = "run the aggregate stage first"

var summaryColumns = []string{types.ColUnit, types.ColGroup, types.ColOccupancy, types.ColRented, types.ColTotal}

type Result struct {
	Rows        []types.SummaryRow
	Diagnostics Diagnostics
	Records     int
}

type Aggregator struct {
	cfg       Config
	appLogger *logger.Logger
}

func NewAggregator(cfg Config, appLogger *logger.Logger) *Aggregator {
	return &Aggregator{cfg: cfg, appLogger: appLogger}
}

// Run reads the consolidated file at inputPath and writes the summary table
// to outputPath.
func (a *Aggregator) Run(inputPath, outputPath string) (*Result, error) {
	const component = "Aggregator"

	records, err := LoadConsolidated(inputPath)
	if err != nil {
		return nil, err
	}

	rows := Summarize(records, a.cfg)
	if err := files.SaveDataFrame(SummaryFrame(rows), outputPath); err != nil {
		return nil, fmt.Errorf("failed to write summary file: %w", err)
	}

	diag := Diagnose(records, a.cfg)
	for _, r := range rows {
		a.appLogger.Info(component, "%s - %s: %.2f%% (%d de %d)", r.Unit, r.GroupClass, r.OccupancyPercent, r.Rented, r.Total)
	}
	a.logDiagnostics(diag)
	a.appLogger.Info(component, "Summary written: path=%s records=%d rows=%d", outputPath, len(records), len(rows))

	return &Result{Rows: rows, Diagnostics: diag, Records: len(records)}, nil
}

func (a *Aggregator) logDiagnostics(d Diagnostics) {
	const component = "Diagnostics"
	for _, class := range types.Classes {
		occ := d.ClassWide[class]
		a.appLogger.Info(component, "class=%s classWide=%.2f%% (%d de %d) simpleMean=%.2f%%",
			class, occ.Percent, occ.Rented, occ.Total, d.SimpleMean[class])
	}
	for _, unit := range types.TrackedUnits {
		occ := d.UnitOverall[unit]
		a.appLogger.Info(component, "unit=%s overall=%.2f%% (%d de %d)", unit, occ.Percent, occ.Rented, occ.Total)
	}
}

// LoadConsolidated reads the records written by the ingest stage.
func LoadConsolidated(path string) ([]types.SnapshotRecord, error) {
	df, err := openRequired(path, RemedyRunIngest)
	if err != nil {
		return nil, err
	}
	if missing, ok := files.HasColumns(df, types.ColUnit, types.ColGroup, types.ColStatus); !ok {
		return nil, fmt.Errorf("consolidated file %s lacks column %q", path, missing)
	}
	return convert.DfToSnapshotRecords(df), nil
}

func openRequired(path, remedy string) (dataframe.DataFrame, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dataframe.DataFrame{}, &types.MissingInputError{Path: path, Remedy: remedy}
		}
		return dataframe.DataFrame{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return files.OpenFileAndDecode(path, files.OutputOptions)
}

// SummaryFrame lays the rows out with the summary file columns. The
// percentage is written with two decimals.
func SummaryFrame(rows []types.SummaryRow) dataframe.DataFrame {
	units := make([]string, len(rows))
	classes := make([]string, len(rows))
	percents := make([]string, len(rows))
	rented := make([]string, len(rows))
	totals := make([]string, len(rows))

	for i, r := range rows {
		units[i] = r.Unit
		classes[i] = r.GroupClass
		percents[i] = strconv.FormatFloat(r.OccupancyPercent, 'f', 2, 64)
		rented[i] = strconv.Itoa(r.Rented)
		totals[i] = strconv.Itoa(r.Total)
	}

	return dataframe.New(
		series.New(units, series.String, types.ColUnit),
		series.New(classes, series.String, types.ColGroup),
		series.New(percents, series.String, types.ColOccupancy),
		series.New(rented, series.String, types.ColRented),
		series.New(totals, series.String, types.ColTotal),
	)
}

// LoadSummary reads the rows written by the aggregate stage.
func LoadSummary(path string) ([]types.SummaryRow, error) {
	df, err := openRequired(path, RemedyRunAggregate)
	if err != nil {
		return nil, err
	}
	if missing, ok := files.HasColumns(df, summaryColumns...); !ok {
		return nil, fmt.Errorf("summary file %s lacks column %q", path, missing)
	}

	rows := make([]types.SummaryRow, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		pct, err := strconv.ParseFloat(convert.GetStr(types.ColOccupancy, i, &df), 64)
		if err != nil {
			return nil, fmt.Errorf("summary row %d: invalid percentage: %w", i+1, err)
		}
		rented, err := strconv.Atoi(convert.GetStr(types.ColRented, i, &df))
		if err != nil {
			return nil, fmt.Errorf("summary row %d: invalid rented count: %w", i+1, err)
		}
		total, err := strconv.Atoi(convert.GetStr(types.ColTotal, i, &df))
		if err != nil {
			return nil, fmt.Errorf("summary row %d: invalid total: %w", i+1, err)
		}
		rows = append(rows, types.SummaryRow{
			Unit:             convert.GetStr(types.ColUnit, i, &df),
			GroupClass:       convert.GetStr(types.ColGroup, i, &df),
			OccupancyPercent: pct,
			Rented:           rented,
			Total:            total,
		})
	}
	return rows, nil
}
