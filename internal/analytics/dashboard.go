package analytics

import "salesdash/internal/core"

// Dashboard is every derived view for one filter spec. It is rebuilt from
// scratch on each call.
type Dashboard struct {
	RecordCount   int                    `json:"recordCount"`
	FilteredCount int                    `json:"filteredCount"`
	ActiveFilters int                    `json:"activeFilters"`
	Yearly        []core.AggregateBucket `json:"yearly"`
	Monthly       []core.AggregateBucket `json:"monthly"`
	Categories    []core.AggregateBucket `json:"categories"`
	Metrics       core.MetricSet         `json:"metrics"`
	Options       core.FilterOptions     `json:"options"`
}

// BuildDashboard filters records once and derives all views from the result.
// Monthly keys are bare month names when the filter narrows to a single year.
// Options always describe the unfiltered records.
func BuildDashboard(records []core.SalesRecord, spec core.FilterSpec) Dashboard {
	filtered := Filter(records, spec)
	monthYear := 0
	if len(spec.Years) == 1 {
		monthYear = spec.Years[0]
	}
	return Dashboard{
		RecordCount:   len(records),
		FilteredCount: len(filtered),
		ActiveFilters: core.ActiveFilterCount(spec),
		Yearly:        YearlyTotals(filtered),
		Monthly:       MonthlyTotals(filtered, monthYear),
		Categories:    CategoryTotals(filtered),
		Metrics:       ComputeMetrics(filtered),
		Options:       Options(records),
	}
}
