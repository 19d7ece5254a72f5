package analytics

import (
	"cmp"
	"slices"

	"salesdash/internal/core"
)

// ComputeMetrics derives the headline KPIs. Growth always compares
// core.CurrentYear with core.PreviousYear, whatever years the input holds,
// and is 0 when the previous year has no total.
func ComputeMetrics(records []core.SalesRecord) core.MetricSet {
	var (
		m         core.MetricSet
		curRev    float64
		prevRev   float64
		curUnits  int
		prevUnits int
	)
	categories := make(map[string]struct{})
	for _, r := range records {
		m.TotalRevenue += r.Revenue
		m.TotalUnits += r.Units
		categories[r.Category] = struct{}{}
		switch r.Year {
		case core.CurrentYear:
			curRev += r.Revenue
			curUnits += r.Units
		case core.PreviousYear:
			prevRev += r.Revenue
			prevUnits += r.Units
		}
	}
	m.RevenueGrowthPct = growthPct(curRev, prevRev)
	m.UnitsGrowthPct = growthPct(float64(curUnits), float64(prevUnits))
	if m.TotalUnits > 0 {
		m.AverageOrderValue = m.TotalRevenue / float64(m.TotalUnits)
	}
	m.DistinctCategoryCount = len(categories)
	return m
}

func growthPct(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

// Options collects the selectable values of each dimension. Years are
// ascending; labels keep first-appearance order.
func Options(records []core.SalesRecord) core.FilterOptions {
	opts := core.FilterOptions{
		Years:      []int{},
		Categories: []string{},
		Regions:    []string{},
		Products:   []string{},
	}
	seen := make(map[string]struct{})
	add := func(dim string, v string, dst *[]string) {
		k := dim + "\x00" + v
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		*dst = append(*dst, v)
	}
	for i, r := range records {
		if !slices.Contains(opts.Years, r.Year) {
			opts.Years = append(opts.Years, r.Year)
		}
		add("c", r.Category, &opts.Categories)
		add("r", r.Region, &opts.Regions)
		add("p", r.Product, &opts.Products)
		if i == 0 || r.Revenue < opts.MinRevenue {
			opts.MinRevenue = r.Revenue
		}
		if i == 0 || r.Revenue > opts.MaxRevenue {
			opts.MaxRevenue = r.Revenue
		}
	}
	slices.SortFunc(opts.Years, cmp.Compare[int])
	return opts
}
