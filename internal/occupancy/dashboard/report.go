package dashboard

import (
	"github.com/farxc/fleet_occupancy/internal/occupancy/aggregate"
	"github.com/farxc/fleet_occupancy/internal/occupancy/types"
	"github.com/farxc/fleet_occupancy/internal/store"
)

// Report is everything the occupancy report shows. The unit filter only
// applies to TimeSeries and ByGroup.
type Report struct {
	Filter     string             `json:"filter"`
	KPIs       []KPI              `json:"kpis"`
	Warnings   []string           `json:"warnings,omitempty"`
	Summary    []types.SummaryRow `json:"summary"`
	TimeSeries []SeriesPoint      `json:"time_series"`
	ByGroup    []GroupPoint       `json:"by_group"`
	Comparison []ClassComparison  `json:"comparison"`
	Statuses   []StatusCount      `json:"statuses"`
	Runs       []store.Run        `json:"runs,omitempty"`
}

// Build assembles the report from the consolidated records and the summary
// rows. It returns an error only for an unknown unit filter.
func Build(records []types.SnapshotRecord, summary []types.SummaryRow, unitFilter string, cfg aggregate.Config) (*Report, error) {
	unit, err := ParseUnitFilter(unitFilter)
	if err != nil {
		return nil, err
	}

	kpis, errs := KPIs(summary)
	r := &Report{
		Filter:     unit,
		KPIs:       kpis,
		Summary:    summary,
		Comparison: CompareClasses(records, cfg),
		Statuses:   StatusDistribution(records),
	}
	for _, e := range errs {
		r.Warnings = append(r.Warnings, e.Error())
	}

	filtered := applyFilter(records, unit)
	r.TimeSeries = TimeSeries(filtered)
	r.ByGroup = ByGroup(filtered)
	return r, nil
}

// Load reads both output files and builds the report.
func Load(consolidatedPath, summaryPath, unitFilter string, cfg aggregate.Config) (*Report, error) {
	if _, err := ParseUnitFilter(unitFilter); err != nil {
		return nil, err
	}
	summary, err := aggregate.LoadSummary(summaryPath)
	if err != nil {
		return nil, err
	}
	return LoadWithSummary(consolidatedPath, summary, unitFilter, cfg)
}

// LoadWithSummary builds the report from the consolidated file and summary
// rows obtained elsewhere, such as the occupancy_summary table.
func LoadWithSummary(consolidatedPath string, summary []types.SummaryRow, unitFilter string, cfg aggregate.Config) (*Report, error) {
	if _, err := ParseUnitFilter(unitFilter); err != nil {
		return nil, err
	}
	records, err := aggregate.LoadConsolidated(consolidatedPath)
	if err != nil {
		return nil, err
	}
	return Build(records, summary, unitFilter, cfg)
}
