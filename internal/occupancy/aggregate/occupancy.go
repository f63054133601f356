package aggregate

import (
	"strconv"

	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
)

// Occupancy is the rented share of a slice of records.
type Occupancy struct {
	Percent float64
	Rented  int
	Total   int
}

func newOccupancy(rented, total int) Occupancy {
	o := Occupancy{Rented: rented, Total: total}
	if total > 0 {
		o.Percent = float64(rented) / float64(total) * 100
	}
	return o
}

// Add sums the counts of two slices and recomputes the percentage.
func (o Occupancy) Add(other Occupancy) Occupancy {
	return newOccupancy(o.Rented+other.Rented, o.Total+other.Total)
}

// Round2 rounds p to two decimal places. Exact halves go to the even
// digit, so 3.125 becomes 3.12.
func Round2(p float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(p, 'f', 2, 64), 64)
	if err != nil {
		return p
	}
	return r
}

// Calculate counts the records of unit whose group is in groups and whose
// status is valid. An empty unit matches every unit and a nil groups set
// matches every group.
func Calculate(records []types.SnapshotRecord, unit string, groups Set, validStatuses Set) Occupancy {
	var rented, total int
	for _, r := range records {
		if unit != "" && r.Unit != unit {
			continue
		}
		if groups != nil && (r.Group == "" || !groups.Has(r.Group)) {
			continue
		}
		if !validStatuses.Has(r.Status) {
			continue
		}
		total++
		if r.IsRented() {
			rented++
		}
	}
	return newOccupancy(rented, total)
}

// Summarize returns the six summary rows in report order: each tracked unit
// by class, then Total Geral by class built from the summed unit counts.
func Summarize(records []types.SnapshotRecord, cfg Config) []types.SummaryRow {
	rows := make([]types.SummaryRow, 0, (len(types.TrackedUnits)+1)*len(types.Classes))
	totals := make(map[string]Occupancy, len(types.Classes))

	for _, unit := range types.TrackedUnits {
		for _, class := range types.Classes {
			occ := Calculate(records, unit, cfg.Classes[class], cfg.ValidStatuses)
			totals[class] = totals[class].Add(occ)
			rows = append(rows, summaryRow(unit, class, occ))
		}
	}
	for _, class := range types.Classes {
		rows = append(rows, summaryRow(types.UnitTotalGeral, class, totals[class]))
	}
	return rows
}

func summaryRow(unit, class string, occ Occupancy) types.SummaryRow {
	return types.SummaryRow{
		Unit:             unit,
		GroupClass:       class,
		OccupancyPercent: Round2(occ.Percent),
		Rented:           occ.Rented,
		Total:            occ.Total,
	}
}

// Diagnostics are console-only figures, never persisted.
type Diagnostics struct {
	// SimpleMean is the unweighted mean of the two unit percentages per class.
	SimpleMean map[string]float64
	// UnitOverall is the occupancy per unit across every group.
	UnitOverall map[string]Occupancy
	// ClassWide is the occupancy per class over all records, any unit.
	ClassWide map[string]Occupancy
}

func Diagnose(records []types.SnapshotRecord, cfg Config) Diagnostics {
	d := Diagnostics{
		SimpleMean:  make(map[string]float64, len(types.Classes)),
		UnitOverall: make(map[string]Occupancy, len(types.TrackedUnits)),
		ClassWide:   make(map[string]Occupancy, len(types.Classes)),
	}

	for _, class := range types.Classes {
		var sum float64
		for _, unit := range types.TrackedUnits {
			sum += Calculate(records, unit, cfg.Classes[class], cfg.ValidStatuses).Percent
		}
		d.SimpleMean[class] = sum / float64(len(types.TrackedUnits))
		d.ClassWide[class] = Calculate(records, "", cfg.Classes[class], cfg.ValidStatuses)
	}
	for _, unit := range types.TrackedUnits {
		d.UnitOverall[unit] = Calculate(records, unit, nil, cfg.ValidStatuses)
	}
	return d
}
