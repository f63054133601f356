package convert

import (
	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/go-gota/gota/dataframe"
)

var knownColumns = map[string]struct{}{
	types.ColUnit:   {},
	types.ColGroup:  {},
	types.ColStatus: {},
	types.ColPlate:  {},
	types.ColOrigin: {},
}

// GetStr returns the cell of col at rowIdx, or "" when the column is absent
// or the cell is missing.
func GetStr(col string, rowIdx int, df *dataframe.DataFrame) string {
	if df == nil {
		return ""
	}
	for _, n := range df.Names() {
		if n == col {
			e := df.Col(col).Elem(rowIdx)
			if e.IsNA() {
				return ""
			}
			return e.String()
		}
	}
	return ""
}

func DfRowToSnapshotRecord(df dataframe.DataFrame, rowIdx int) types.SnapshotRecord {
	rec := types.SnapshotRecord{
		Unit:   GetStr(types.ColUnit, rowIdx, &df),
		Group:  GetStr(types.ColGroup, rowIdx, &df),
		Status: GetStr(types.ColStatus, rowIdx, &df),
		Plate:  GetStr(types.ColPlate, rowIdx, &df),
		Origin: GetStr(types.ColOrigin, rowIdx, &df),
	}

	for _, n := range df.Names() {
		if _, ok := knownColumns[n]; ok {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[n] = GetStr(n, rowIdx, &df)
	}
	return rec
}

// DfToSnapshotRecords converts every row of df.
func DfToSnapshotRecords(df dataframe.DataFrame) []types.SnapshotRecord {
	records := make([]types.SnapshotRecord, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		records = append(records, DfRowToSnapshotRecord(df, i))
	}
	return records
}
