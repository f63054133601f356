package files

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/charmap"
)

const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

// ReadOptions controls how a CSV file is decoded.
type ReadOptions struct {
	Delimiter rune
	Encoding  string
}

// SnapshotOptions are the defaults for the raw daily exports.
var SnapshotOptions = ReadOptions{Delimiter: ',', Encoding: EncodingUTF8}

// OutputOptions match what SaveDataFrame writes.
var OutputOptions = ReadOptions{Delimiter: ',', Encoding: EncodingUTF8}

var snapshotDatePattern = regexp.MustCompile(`(\d{2})-(\d{2})-(\d{4})`)

// ListSnapshots returns the *.csv files of dir sorted by name. A missing
// directory yields no files and no error.
func ListSnapshots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list snapshot dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ExtractSnapshotDate finds the first DD-MM-YYYY token in the base name of
// path. The label is kept even when it is not a real calendar date.
func ExtractSnapshotDate(path string) types.SnapshotDate {
	m := snapshotDatePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return types.SnapshotDate{}
	}

	label := fmt.Sprintf("%s/%s/%s", m[1], m[2], m[3])
	d := types.SnapshotDate{Label: label, Found: true}
	if t, err := time.Parse(types.OriginLayout, label); err == nil {
		d.Time = t
		d.Valid = true
	}
	return d
}

func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8, "utf8":
		return r, nil
	case EncodingWindows1252, "cp1252", "latin1":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// OpenFileAndDecode loads a CSV file into a dataframe whose columns are all
// string typed. A header-only file yields an empty frame with those columns.
func OpenFileAndDecode(path string, opts ReadOptions) (dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	decoded, err := decoder(file, opts.Encoding)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	return ReadFrame(decoded, opts.Delimiter)
}

// ReadFrame parses CSV content from r. See OpenFileAndDecode. Rows shorter
// than the header are padded with empty cells; a row longer than the header
// fails the whole file. The cells NA and NaN are read as missing and, like
// missing cells, come back as empty strings.
func ReadFrame(r io.Reader, delimiter rune) (dataframe.DataFrame, error) {
	if delimiter == 0 {
		delimiter = ','
	}

	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("csv has no header")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if len(records) == 1 {
		return EmptyFrame(header...), nil
	}

	for i := 1; i < len(records); i++ {
		switch row := records[i]; {
		case len(row) > len(header):
			return dataframe.DataFrame{}, fmt.Errorf("line %d: expected %d fields, saw %d", i+1, len(header), len(row))
		case len(row) < len(header):
			records[i] = append(row, make([]string, len(header)-len(row))...)
		}
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"NA", "NaN"}),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to load records: %w", df.Err)
	}
	return FillNA(df), nil
}

// EmptyFrame returns a zero-row frame with the given string columns.
func EmptyFrame(columns ...string) dataframe.DataFrame {
	cols := make([]series.Series, len(columns))
	for i, name := range columns {
		cols[i] = series.New([]string{}, series.String, name)
	}
	return dataframe.New(cols...)
}

// HasColumns reports the first of names missing from df, if any.
func HasColumns(df dataframe.DataFrame, names ...string) (string, bool) {
	have := make(map[string]struct{}, df.Ncol())
	for _, n := range df.Names() {
		have[n] = struct{}{}
	}
	for _, n := range names {
		if _, ok := have[n]; !ok {
			return n, false
		}
	}
	return "", true
}

// FillNA replaces missing cells with empty strings in every column.
func FillNA(df dataframe.DataFrame) dataframe.DataFrame {
	for _, name := range df.Names() {
		col := df.Col(name)
		hasNA := false
		vals := make([]string, col.Len())
		for i := 0; i < col.Len(); i++ {
			e := col.Elem(i)
			if e.IsNA() {
				hasNA = true
				continue
			}
			vals[i] = e.String()
		}
		if hasNA {
			df = df.Mutate(series.New(vals, series.String, name))
		}
	}
	return df
}

// SaveDataFrame writes df as CSV to filename. The content goes to a temp file
// in the same directory first and is renamed over filename, so readers see
// either the old or the new file.
func SaveDataFrame(df dataframe.DataFrame, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("error creating dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	tmp := f.Name()

	if err := df.WriteCSV(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("error writing csv: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error closing file: %w", err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error replacing %s: %w", filename, err)
	}
	return nil
}
