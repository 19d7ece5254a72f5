package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/core"
)

func TestSummarizeRounds(t *testing.T) {
	s := Summarize(core.MetricSet{
		TotalRevenue:          250.004,
		TotalUnits:            22,
		RevenueGrowthPct:      49.96,
		UnitsGrowthPct:        20,
		AverageOrderValue:     250.0 / 22.0,
		DistinctCategoryCount: 1,
	})
	assert.Equal(t, "250.00", s.TotalRevenue.StringFixed(2))
	assert.Equal(t, "50.0", s.RevenueGrowthPct.StringFixed(1))
	assert.Equal(t, "11.36", s.AverageOrderValue.StringFixed(2))
	assert.Equal(t, 22, s.TotalUnits)
}

func TestKPIs(t *testing.T) {
	kpis := KPIs(core.MetricSet{
		TotalRevenue:          1234567.891,
		TotalUnits:            12345,
		RevenueGrowthPct:      8.6956,
		UnitsGrowthPct:        -3.25,
		AverageOrderValue:     100.009,
		DistinctCategoryCount: 5,
	})
	require.Len(t, kpis, 6)
	assert.Equal(t, KPI{"Total Revenue", "$1,234,567.89"}, kpis[0])
	assert.Equal(t, KPI{"Units Sold", "12,345"}, kpis[1])
	assert.Equal(t, KPI{"Revenue Growth", "+8.7%"}, kpis[2])
	assert.Equal(t, "-3.3%", kpis[3].Value)
	assert.Equal(t, "$100.01", kpis[4].Value)
	assert.Equal(t, "5", kpis[5].Value)
}

func TestFormatCurrency(t *testing.T) {
	tests := map[string]struct {
		in   float64
		want string
	}{
		"zero":      {0, "$0.00"},
		"cents":     {0.5, "$0.50"},
		"thousands": {1234.5, "$1,234.50"},
		"negative":  {-99.999, "-$100.00"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.in))
		})
	}
}

func TestFormatCompact(t *testing.T) {
	assert.Equal(t, "$950.00", FormatCompact(950))
	assert.Equal(t, "$1.2M", FormatCompact(1234567))
	assert.Equal(t, "$45K", FormatCompact(45000))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "0.0%", FormatPercent(decimal.Zero))
	assert.Equal(t, "+50.0%", FormatPercent(decimal.NewFromInt(50)))
}

func TestShares(t *testing.T) {
	shares := Shares([]core.AggregateBucket{
		{Key: "A", Revenue: 30, Value: 30},
		{Key: "B", Revenue: 10, Value: 10},
	})
	require.Len(t, shares, 2)
	assert.Equal(t, "A", shares[0].Name)
	assert.True(t, shares[0].Percent.Equal(decimal.NewFromInt(75)))
	assert.True(t, shares[1].Percent.Equal(decimal.NewFromInt(25)))

	zero := Shares([]core.AggregateBucket{{Key: "A"}})
	assert.True(t, zero[0].Percent.IsZero())
	assert.Empty(t, Shares(nil))
}
