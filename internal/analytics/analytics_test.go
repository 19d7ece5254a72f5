package analytics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/core"
	"salesdash/internal/records/memory"
)

func mk(t *testing.T, id string, year, month int, category string, revenue float64, units int) core.SalesRecord {
	t.Helper()
	r, err := core.NewSalesRecord(id, year, month, revenue, units, category, "Europe", "Product "+category)
	require.NoError(t, err)
	return r
}

func sums(recs []core.SalesRecord) (float64, int) {
	var rev float64
	var units int
	for _, r := range recs {
		rev += r.Revenue
		units += r.Units
	}
	return rev, units
}

func bucketSums(bs []core.AggregateBucket) (float64, int) {
	var rev float64
	var units int
	for _, b := range bs {
		rev += b.Revenue
		units += b.Units
	}
	return rev, units
}

func TestMetricsConcreteScenario(t *testing.T) {
	recs := []core.SalesRecord{
		mk(t, "1", 2023, 1, "Books", 100, 10),
		mk(t, "2", 2024, 1, "Books", 150, 12),
	}
	m := ComputeMetrics(recs)
	assert.Equal(t, 250.0, m.TotalRevenue)
	assert.Equal(t, 22, m.TotalUnits)
	assert.InDelta(t, 50.0, m.RevenueGrowthPct, 1e-9)
	assert.InDelta(t, 20.0, m.UnitsGrowthPct, 1e-9)
	assert.InDelta(t, 11.36, m.AverageOrderValue, 0.01)
	assert.Equal(t, 1, m.DistinctCategoryCount)

	filtered := Filter(recs, core.DefaultFilterSpec().SetThreshold(120))
	require.Len(t, filtered, 1)
	assert.Equal(t, "2", filtered[0].ID)
}

func TestCategoryTotalsConcreteScenario(t *testing.T) {
	recs := []core.SalesRecord{
		mk(t, "1", 2024, 1, "A", 10, 1),
		mk(t, "2", 2024, 2, "A", 20, 1),
		mk(t, "3", 2024, 3, "B", 5, 1),
	}
	got := CategoryTotals(recs)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Key)
	assert.Equal(t, 30.0, got[0].Revenue)
	assert.Equal(t, 30.0, got[0].Value)
	assert.Equal(t, "B", got[1].Key)
	assert.Equal(t, 5.0, got[1].Revenue)
}

func TestGrowthZeroGuard(t *testing.T) {
	recs := []core.SalesRecord{
		mk(t, "1", 2022, 1, "Books", 100, 10),
		mk(t, "2", 2024, 1, "Books", 150, 12),
	}
	m := ComputeMetrics(recs)
	assert.Equal(t, 0.0, m.RevenueGrowthPct)
	assert.Equal(t, 0.0, m.UnitsGrowthPct)
	assert.False(t, math.IsNaN(m.RevenueGrowthPct) || math.IsInf(m.RevenueGrowthPct, 0))

	// A previous year that exists but sums to zero is still guarded.
	zero := []core.SalesRecord{
		mk(t, "1", 2023, 1, "Books", 0, 0),
		mk(t, "2", 2024, 1, "Books", 10, 1),
	}
	m = ComputeMetrics(zero)
	assert.Equal(t, 0.0, m.RevenueGrowthPct)
	assert.Equal(t, 0.0, m.UnitsGrowthPct)
}

func TestEmptyInputYieldsZeroValues(t *testing.T) {
	assert.Equal(t, core.MetricSet{}, ComputeMetrics(nil))
	assert.Empty(t, YearlyTotals(nil))
	assert.NotNil(t, YearlyTotals(nil))
	assert.Empty(t, MonthlyTotals(nil, 0))
	assert.Empty(t, CategoryTotals(nil))
	assert.Empty(t, Filter(nil, core.DefaultFilterSpec()))

	d := BuildDashboard(nil, core.DefaultFilterSpec())
	assert.Equal(t, 0, d.FilteredCount)
	assert.Equal(t, core.MetricSet{}, d.Metrics)
}

func TestAverageOrderValueWithoutUnits(t *testing.T) {
	m := ComputeMetrics([]core.SalesRecord{mk(t, "1", 2024, 1, "Books", 100, 0)})
	assert.Equal(t, 0.0, m.AverageOrderValue)
	assert.Equal(t, 100.0, m.TotalRevenue)
}

func TestFilterIdentity(t *testing.T) {
	recs := memory.Generate(11)
	assert.Equal(t, recs, Filter(recs, core.DefaultFilterSpec()))
	assert.Equal(t, recs, Filter(recs, core.FilterSpec{}))
}

func TestEmptySetMeansAll(t *testing.T) {
	recs := memory.Generate(5)
	spec := core.DefaultFilterSpec()
	spec.Years = nil
	got := Filter(recs, spec)
	assert.Len(t, got, len(recs))

	years := map[int]bool{}
	for _, r := range got {
		years[r.Year] = true
	}
	assert.Len(t, years, 3)
}

func TestFilterMonotonicity(t *testing.T) {
	recs := memory.Generate(5)
	base := core.DefaultFilterSpec()
	n := len(Filter(recs, base))

	tighter := []core.FilterSpec{
		base.SetYears([]int{2023}),
		base.ToggleCategory("Books"),
		base.ToggleRegion("Europe"),
		base.ToggleProduct("Lighting"),
		base.SetThreshold(100000),
	}
	for _, s := range tighter {
		m := len(Filter(recs, s))
		assert.LessOrEqual(t, m, n, "spec %+v", s)
		// Raising the threshold on top never widens the result.
		assert.LessOrEqual(t, len(Filter(recs, s.SetThreshold(s.Threshold+50000))), m)
	}
}

func TestFilterPreservesOrderAndAllDimensions(t *testing.T) {
	recs := memory.Generate(8)
	spec := core.DefaultFilterSpec().
		SetYears([]int{2024, 2022}).
		ToggleCategory("Electronics").
		ToggleRegion("Europe").
		SetThreshold(90000)
	got := Filter(recs, spec)
	require.NotEmpty(t, got)

	last := -1
	for _, r := range got {
		assert.Contains(t, []int{2022, 2024}, r.Year)
		assert.Equal(t, "Electronics", r.Category)
		assert.Equal(t, "Europe", r.Region)
		assert.GreaterOrEqual(t, r.Revenue, 90000.0)
		idx := -1
		for i := range recs {
			if recs[i].ID == r.ID {
				idx = i
				break
			}
		}
		assert.Greater(t, idx, last, "order not preserved")
		last = idx
	}
}

func TestAggregationConservation(t *testing.T) {
	recs := Filter(memory.Generate(21), core.DefaultFilterSpec().ToggleRegion("Europe"))
	wantRev, wantUnits := sums(recs)

	for name, bs := range map[string][]core.AggregateBucket{
		"yearly":         YearlyTotals(recs),
		"monthly":        MonthlyTotals(recs, 0),
		"category":       CategoryTotals(recs),
		"monthly single": MonthlyTotals(Filter(recs, core.FilterSpec{Years: []int{2023}}), 2023),
	} {
		gotRev, gotUnits := bucketSums(bs)
		if name == "monthly single" {
			wantRev, wantUnits := sums(Filter(recs, core.FilterSpec{Years: []int{2023}}))
			assert.InDelta(t, wantRev, gotRev, 1e-6, name)
			assert.Equal(t, wantUnits, gotUnits, name)
			continue
		}
		assert.InDelta(t, wantRev, gotRev, 1e-6, name)
		assert.Equal(t, wantUnits, gotUnits, name)
		for _, b := range bs {
			assert.Equal(t, b.Revenue, b.Value, name)
		}
	}
}

func TestYearlyTotalsSortedAscending(t *testing.T) {
	recs := []core.SalesRecord{
		mk(t, "1", 2024, 1, "A", 1, 1),
		mk(t, "2", 2022, 1, "A", 2, 1),
		mk(t, "3", 2023, 1, "A", 3, 1),
		mk(t, "4", 2022, 1, "A", 4, 1),
	}
	got := YearlyTotals(recs)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2022", "2023", "2024"}, []string{got[0].Key, got[1].Key, got[2].Key})
	assert.Equal(t, 6.0, got[0].Revenue)
	assert.Equal(t, 2, got[0].Units)
}

func TestMonthlyTotalsOrderingForAnyInputOrder(t *testing.T) {
	recs := memory.Generate(13)
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 5; i++ {
		shuffled := append([]core.SalesRecord(nil), recs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := MonthlyTotals(shuffled, 0)
		require.Len(t, got, 36)
		for j := 1; j < len(got); j++ {
			prev, cur := got[j-1], got[j]
			assert.True(t, prev.MonthNumber < cur.MonthNumber ||
				(prev.MonthNumber == cur.MonthNumber && prev.Year < cur.Year),
				"out of order at %d: %s then %s", j, prev.Key, cur.Key)
		}
		assert.Equal(t, "January 2022", got[0].Key)
		assert.Equal(t, "December 2024", got[35].Key)
	}
}

func TestMonthlyTotalsSingleYearKeys(t *testing.T) {
	recs := []core.SalesRecord{
		mk(t, "1", 2024, 3, "A", 5, 1),
		mk(t, "2", 2023, 1, "A", 7, 1),
		mk(t, "3", 2024, 1, "A", 1, 1),
		mk(t, "4", 2024, 1, "B", 2, 1),
	}
	got := MonthlyTotals(recs, 2024)
	require.Len(t, got, 2)
	assert.Equal(t, "January", got[0].Key)
	assert.Equal(t, 3.0, got[0].Revenue)
	assert.Equal(t, "March", got[1].Key)

	all := MonthlyTotals(recs, 0)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"January 2023", "January 2024", "March 2024"},
		[]string{all[0].Key, all[1].Key, all[2].Key})
}

func TestOptions(t *testing.T) {
	recs := []core.SalesRecord{
		mk(t, "1", 2024, 1, "Sports", 50, 1),
		mk(t, "2", 2022, 1, "Books", 5, 1),
		mk(t, "3", 2023, 1, "Sports", 500, 1),
	}
	o := Options(recs)
	assert.Equal(t, []int{2022, 2023, 2024}, o.Years)
	assert.Equal(t, []string{"Sports", "Books"}, o.Categories)
	assert.Equal(t, []string{"Europe"}, o.Regions)
	assert.Equal(t, []string{"Product Sports", "Product Books"}, o.Products)
	assert.Equal(t, 5.0, o.MinRevenue)
	assert.Equal(t, 500.0, o.MaxRevenue)

	empty := Options(nil)
	assert.Empty(t, empty.Years)
	assert.Zero(t, empty.MaxRevenue)
}

func TestBuildDashboard(t *testing.T) {
	recs := memory.Generate(4)

	d := BuildDashboard(recs, core.DefaultFilterSpec())
	assert.Equal(t, len(recs), d.RecordCount)
	assert.Equal(t, len(recs), d.FilteredCount)
	assert.Equal(t, 0, d.ActiveFilters)
	assert.Len(t, d.Yearly, 3)
	assert.Len(t, d.Monthly, 36)
	assert.Len(t, d.Categories, 5)
	assert.Equal(t, 5, d.Metrics.DistinctCategoryCount)
	assert.Greater(t, d.Metrics.RevenueGrowthPct, 0.0)
	assert.Equal(t, []int{2022, 2023, 2024}, d.Options.Years)

	single := BuildDashboard(recs, core.DefaultFilterSpec().ApplyQuickFilter(core.QuickCurrentYear))
	assert.Len(t, single.Monthly, 12)
	assert.Equal(t, "January", single.Monthly[0].Key)
	assert.Equal(t, 1, single.ActiveFilters)
	// Only the current year is present, so there is nothing to compare against.
	assert.Equal(t, 0.0, single.Metrics.RevenueGrowthPct)
	assert.Len(t, single.Options.Years, 3)
}

func TestChartTypeDoesNotAffectData(t *testing.T) {
	recs := memory.Generate(11)
	bases := []core.FilterSpec{
		core.DefaultFilterSpec(),
		core.DefaultFilterSpec().SetYears([]int{2024}).ToggleCategory("Electronics"),
		core.DefaultFilterSpec().SetThreshold(20000).ToggleRegion("Europe"),
	}
	for _, base := range bases {
		want := Filter(recs, base.SetChartType(core.ChartBar))
		wantView := BuildDashboard(recs, base.SetChartType(core.ChartBar))
		for _, chart := range []core.ChartType{core.ChartLine, core.ChartPie} {
			spec := base.SetChartType(chart)
			assert.Equal(t, want, Filter(recs, spec), "filter with %s", chart)
			assert.Equal(t, wantView, BuildDashboard(recs, spec), "dashboard with %s", chart)
		}
	}
}
