// Package report turns computed metrics into presentation values: amounts
// rounded with decimal arithmetic and formatted for people to read.
package report

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"salesdash/internal/core"
)

// Summary is the rounded form of a MetricSet.
type Summary struct {
	TotalRevenue          decimal.Decimal `json:"totalRevenue"`
	TotalUnits            int             `json:"totalUnits"`
	RevenueGrowthPct      decimal.Decimal `json:"revenueGrowthPct"`
	UnitsGrowthPct        decimal.Decimal `json:"unitsGrowthPct"`
	AverageOrderValue     decimal.Decimal `json:"averageOrderValue"`
	DistinctCategoryCount int             `json:"distinctCategoryCount"`
}

// KPI is one labelled headline value.
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Share is a category's slice of the total revenue.
type Share struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
	Percent decimal.Decimal `json:"percent"`
}

// Summarize rounds money to cents and percentages to one decimal place.
func Summarize(m core.MetricSet) Summary {
	return Summary{
		TotalRevenue:          decimal.NewFromFloat(m.TotalRevenue).Round(2),
		TotalUnits:            m.TotalUnits,
		RevenueGrowthPct:      decimal.NewFromFloat(m.RevenueGrowthPct).Round(1),
		UnitsGrowthPct:        decimal.NewFromFloat(m.UnitsGrowthPct).Round(1),
		AverageOrderValue:     decimal.NewFromFloat(m.AverageOrderValue).Round(2),
		DistinctCategoryCount: m.DistinctCategoryCount,
	}
}

// KPIs lists the headline values in display order.
func KPIs(m core.MetricSet) []KPI {
	s := Summarize(m)
	return []KPI{
		{Label: "Total Revenue", Value: FormatCurrency(s.TotalRevenue)},
		{Label: "Units Sold", Value: humanize.Comma(int64(s.TotalUnits))},
		{Label: "Revenue Growth", Value: FormatPercent(s.RevenueGrowthPct)},
		{Label: "Units Growth", Value: FormatPercent(s.UnitsGrowthPct)},
		{Label: "Avg Order Value", Value: FormatCurrency(s.AverageOrderValue)},
		{Label: "Categories", Value: humanize.Comma(int64(s.DistinctCategoryCount))},
	}
}

// Shares computes each bucket's share of the summed revenue. Percentages are
// rounded to one decimal place and are all zero when the total is zero.
func Shares(buckets []core.AggregateBucket) []Share {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(decimal.NewFromFloat(b.Revenue))
	}
	out := make([]Share, 0, len(buckets))
	hundred := decimal.NewFromInt(100)
	for _, b := range buckets {
		rev := decimal.NewFromFloat(b.Revenue)
		pct := decimal.Zero
		if !total.IsZero() {
			pct = rev.Div(total).Mul(hundred).Round(1)
		}
		out = append(out, Share{Name: b.Key, Revenue: rev.Round(2), Percent: pct})
	}
	return out
}

// FormatCurrency renders a dollar amount with thousands separators and
// cents, e.g. "$1,234.50".
func FormatCurrency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	f, _ := d.Round(2).Float64()
	return sign + "$" + humanize.FormatFloat("#,###.##", f)
}

// FormatAmount is FormatCurrency for a float.
func FormatAmount(v float64) string {
	return FormatCurrency(decimal.NewFromFloat(v))
}

// FormatCompact renders large amounts with an SI suffix, e.g. "$1.2M".
func FormatCompact(v float64) string {
	if v < 1000 && v > -1000 {
		return FormatAmount(v)
	}
	value, prefix := humanize.ComputeSI(v)
	return "$" + strings.TrimSuffix(strings.TrimSuffix(decimal.NewFromFloat(value).StringFixed(1), "0"), ".") +
		strings.ToUpper(prefix)
}

// FormatPercent renders a signed percentage, e.g. "+12.5%".
func FormatPercent(d decimal.Decimal) string {
	s := d.StringFixed(1) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}
