package ingest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/farxc/fleet_occupancy/internal/logger"
	"github.com/farxc/fleet_occupancy/internal/occupancy/convert"
	"github.com/farxc/fleet_occupancy/internal/occupancy/files"
	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

type Config struct {
	SourceDir  string
	OutputPath string
	Read       files.ReadOptions
	// Units kept at ingestion. Defaults to types.TrackedUnits.
	Units []string
}

// Result describes one ingestion run.
type Result struct {
	Frame        dataframe.DataFrame
	Records      []types.SnapshotRecord
	Files        []string
	SkippedFiles []string
	RowsRead     int
	RowsKept     int
	Duplicates   int
}

type Ingestor struct {
	cfg       Config
	appLogger *logger.Logger
}

func NewIngestor(cfg Config, appLogger *logger.Logger) *Ingestor {
	if len(cfg.Units) == 0 {
		cfg.Units = types.TrackedUnits
	}
	if cfg.Read.Delimiter == 0 {
		cfg.Read = files.SnapshotOptions
	}
	return &Ingestor{cfg: cfg, appLogger: appLogger}
}

// Run reads every snapshot of the source directory and writes the
// consolidated record set to the output path.
func (in *Ingestor) Run() (*Result, error) {
	const component = "Ingestor"

	res, err := in.Consolidate()
	if err != nil {
		return nil, err
	}

	if err := files.SaveDataFrame(res.Frame, in.cfg.OutputPath); err != nil {
		return nil, fmt.Errorf("failed to write consolidated file: %w", err)
	}

	in.appLogger.Info(component, "Consolidated file written: path=%s files=%d skipped=%d rowsRead=%d rowsKept=%d duplicatesRemoved=%d",
		in.cfg.OutputPath, len(res.Files), len(res.SkippedFiles), res.RowsRead, res.RowsKept, res.Duplicates)
	return res, nil
}

// Consolidate builds the deduplicated record set without writing it.
func (in *Ingestor) Consolidate() (*Result, error) {
	const component = "Ingestor"

	paths, err := files.ListSnapshots(in.cfg.SourceDir)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if len(paths) == 0 {
		in.appLogger.Warn(component, "No snapshot files found: dir=%s", in.cfg.SourceDir)
	}

	var frames []dataframe.DataFrame
	for _, p := range paths {
		df, read, err := in.loadSnapshot(p)
		if err != nil {
			in.appLogger.Warn(component, "Snapshot skipped: file=%s reason=%v", filepath.Base(p), err)
			res.SkippedFiles = append(res.SkippedFiles, p)
			continue
		}
		in.appLogger.Debug(component, "Snapshot loaded: file=%s rows=%d kept=%d", filepath.Base(p), read, df.Nrow())
		res.RowsRead += read
		res.Files = append(res.Files, p)
		frames = append(frames, df)
	}

	combined, err := concatFrames(frames)
	if err != nil {
		return nil, err
	}

	combined = files.FillNA(combined)
	combined = trimColumns(combined, types.ColGroup, types.ColStatus)

	before := combined.Nrow()
	combined = Deduplicate(combined)
	if combined.Err != nil {
		return nil, fmt.Errorf("failed to deduplicate records: %w", combined.Err)
	}

	res.Frame = combined
	res.RowsKept = combined.Nrow()
	res.Duplicates = before - res.RowsKept
	res.Records = convert.DfToSnapshotRecords(combined)
	return res, nil
}

func (in *Ingestor) loadSnapshot(path string) (dataframe.DataFrame, int, error) {
	df, err := files.OpenFileAndDecode(path, in.cfg.Read)
	if err != nil {
		return dataframe.DataFrame{}, 0, err
	}
	if missing, ok := files.HasColumns(df, types.RequiredColumns...); !ok {
		return dataframe.DataFrame{}, 0, fmt.Errorf("missing required column %q", missing)
	}

	read := df.Nrow()
	if read > 0 {
		df = df.Filter(dataframe.F{
			Colname:    types.ColUnit,
			Comparator: series.In,
			Comparando: in.cfg.Units,
		})
		if df.Err != nil {
			return dataframe.DataFrame{}, 0, fmt.Errorf("failed to filter units: %w", df.Err)
		}
	}

	if _, ok := files.HasColumns(df, types.ColNotes); ok {
		df = df.Drop(types.ColNotes)
	}

	date := files.ExtractSnapshotDate(path)
	origin := make([]string, df.Nrow())
	for i := range origin {
		origin[i] = date.Label
	}
	df = df.Mutate(series.New(origin, series.String, types.ColOrigin))
	if df.Err != nil {
		return dataframe.DataFrame{}, 0, fmt.Errorf("failed to tag origin: %w", df.Err)
	}

	return df, read, nil
}

func concatFrames(frames []dataframe.DataFrame) (dataframe.DataFrame, error) {
	if len(frames) == 0 {
		return files.EmptyFrame(types.ColUnit, types.ColGroup, types.ColStatus, types.ColPlate, types.ColOrigin), nil
	}

	combined := frames[0]
	for _, f := range frames[1:] {
		combined = combined.Concat(f)
		if combined.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("failed to concatenate snapshots: %w", combined.Err)
		}
	}
	return combined, nil
}

func trimColumns(df dataframe.DataFrame, names ...string) dataframe.DataFrame {
	for _, name := range names {
		vals := df.Col(name).Records()
		for i, v := range vals {
			vals[i] = strings.TrimSpace(v)
		}
		df = df.Mutate(series.New(vals, series.String, name))
	}
	return df
}

// Deduplicate keeps one row per (Nome Da Origem, Placa). Rows are stably
// ordered by origin, plate and status priority (Alugado first) and the first
// row of each key survives, so among non-Alugado duplicates the earliest row
// in file order wins. The result keeps that sorted order.
func Deduplicate(df dataframe.DataFrame) dataframe.DataFrame {
	n := df.Nrow()
	if n == 0 {
		return df
	}

	origins := df.Col(types.ColOrigin).Records()
	plates := df.Col(types.ColPlate).Records()
	statuses := df.Col(types.ColStatus).Records()

	priority := func(i int) int {
		if statuses[i] == types.StatusRented {
			return 0
		}
		return 1
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if origins[i] != origins[j] {
			return origins[i] < origins[j]
		}
		if plates[i] != plates[j] {
			return plates[i] < plates[j]
		}
		return priority(i) < priority(j)
	})

	keep := make([]int, 0, n)
	for k, i := range idx {
		if k > 0 {
			prev := idx[k-1]
			if origins[prev] == origins[i] && plates[prev] == plates[i] {
				continue
			}
		}
		keep = append(keep, i)
	}

	return df.Subset(keep)
}
