package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/farxc/fleet_occupancy/internal/occupancy/aggregate"
	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
)

// FilterAll selects every unit.
const FilterAll = "Todos"

var ErrUnknownUnit = errors.New("unknown unit filter")

// ParseUnitFilter accepts "Todos" or one of the tracked units.
func ParseUnitFilter(s string) (string, error) {
	if s == "" || s == FilterAll {
		return FilterAll, nil
	}
	for _, u := range types.TrackedUnits {
		if s == u {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

func applyFilter(records []types.SnapshotRecord, unit string) []types.SnapshotRecord {
	if unit == FilterAll {
		return records
	}
	out := make([]types.SnapshotRecord, 0, len(records))
	for _, r := range records {
		if r.Unit == unit {
			out = append(out, r)
		}
	}
	return out
}

type KPI struct {
	Unit    string  `json:"unit"`
	Class   string  `json:"class"`
	Percent float64 `json:"percent"`
}

// KPIs looks up the four unit/class percentages in the summary rows. Pairs
// that are absent are reported as LookupMiscountError and left out.
func KPIs(rows []types.SummaryRow) ([]KPI, []error) {
	var kpis []KPI
	var errs []error
	for _, unit := range types.TrackedUnits {
		for _, class := range types.Classes {
			found := false
			for _, r := range rows {
				if r.Unit == unit && r.GroupClass == class {
					kpis = append(kpis, KPI{Unit: unit, Class: class, Percent: r.OccupancyPercent})
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, &types.LookupMiscountError{Unit: unit, Class: class})
			}
		}
	}
	return kpis, errs
}

type SeriesPoint struct {
	Date    time.Time `json:"-"`
	Label   string    `json:"date"`
	Percent float64   `json:"percent"`
	Rented  int       `json:"rented"`
	Count   int       `json:"count"`
}

// TimeSeries computes, per snapshot date, the share of rows with status
// Alugado among all rows of that date. Rows whose origin is not a DD/MM/YYYY
// date are left out.
func TimeSeries(records []types.SnapshotRecord) []SeriesPoint {
	byDate := make(map[time.Time]*SeriesPoint)
	for _, r := range records {
		d, err := time.Parse(types.OriginLayout, r.Origin)
		if err != nil {
			continue
		}
		p, ok := byDate[d]
		if !ok {
			p = &SeriesPoint{Date: d, Label: d.Format(types.OriginLayout)}
			byDate[d] = p
		}
		p.Count++
		if r.IsRented() {
			p.Rented++
		}
	}

	points := make([]SeriesPoint, 0, len(byDate))
	for _, p := range byDate {
		p.Percent = share(p.Rented, p.Count)
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

type GroupPoint struct {
	Group   string  `json:"group"`
	Percent float64 `json:"percent"`
	Rented  int     `json:"rented"`
	Count   int     `json:"count"`
}

// ByGroup computes the Alugado share per group code over all rows of the
// group, sorted by code. Rows without a group are left out.
func ByGroup(records []types.SnapshotRecord) []GroupPoint {
	byGroup := make(map[string]*GroupPoint)
	for _, r := range records {
		if r.Group == "" {
			continue
		}
		p, ok := byGroup[r.Group]
		if !ok {
			p = &GroupPoint{Group: r.Group}
			byGroup[r.Group] = p
		}
		p.Count++
		if r.IsRented() {
			p.Rented++
		}
	}

	points := make([]GroupPoint, 0, len(byGroup))
	for _, p := range byGroup {
		p.Percent = share(p.Rented, p.Count)
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Group < points[j].Group })
	return points
}

type UnitOccupancy struct {
	Unit    string  `json:"unit"`
	Percent float64 `json:"percent"`
	Rented  int     `json:"rented"`
	Total   int     `json:"total"`
}

type ClassComparison struct {
	Class string          `json:"class"`
	Units []UnitOccupancy `json:"units"`
}

// CompareClasses puts the tracked units side by side for each class,
// counting only valid statuses.
func CompareClasses(records []types.SnapshotRecord, cfg aggregate.Config) []ClassComparison {
	out := make([]ClassComparison, 0, len(types.Classes))
	for _, class := range types.Classes {
		cmp := ClassComparison{Class: class}
		for _, unit := range types.TrackedUnits {
			occ := aggregate.Calculate(records, unit, cfg.Classes[class], cfg.ValidStatuses)
			cmp.Units = append(cmp.Units, UnitOccupancy{Unit: unit, Percent: occ.Percent, Rented: occ.Rented, Total: occ.Total})
		}
		out = append(out, cmp)
	}
	return out
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// StatusDistribution counts rows per status, most frequent first. Ties are
// ordered by status name and empty statuses are left out.
func StatusDistribution(records []types.SnapshotRecord) []StatusCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Status == "" {
			continue
		}
		counts[r.Status]++
	}

	out := make([]StatusCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, StatusCount{Status: s, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}

func share(rented, count int) float64 {
	if count == 0 {
		return 0
	}
	return 100 * float64(rented) / float64(count)
}
