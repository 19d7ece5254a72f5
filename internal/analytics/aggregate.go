package analytics

import (
	"cmp"
	"slices"
	"strconv"

	"salesdash/internal/core"
)

// group sums revenue and units per key. Buckets come out in order of first
// appearance; callers sort when they need another order.
func group(records []core.SalesRecord, key func(core.SalesRecord) string, seed func(core.SalesRecord, string) core.AggregateBucket) []core.AggregateBucket {
	index := make(map[string]int)
	out := make([]core.AggregateBucket, 0)
	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, seed(r, k))
		}
		out[i].Revenue += r.Revenue
		out[i].Units += r.Units
	}
	for i := range out {
		out[i].Value = out[i].Revenue
	}
	return out
}

// YearlyTotals groups records by year, ascending.
func YearlyTotals(records []core.SalesRecord) []core.AggregateBucket {
	out := group(records,
		func(r core.SalesRecord) string { return strconv.Itoa(r.Year) },
		func(r core.SalesRecord, k string) core.AggregateBucket {
			return core.AggregateBucket{Key: k, Year: r.Year}
		})
	slices.SortStableFunc(out, func(a, b core.AggregateBucket) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return out
}

// MonthlyTotals groups records by month. With year != 0 only that year is
// considered and keys are bare month names; with year == 0 keys are
// qualified as "<Month> <Year>". Output is sorted by month number, then year.
func MonthlyTotals(records []core.SalesRecord, year int) []core.AggregateBucket {
	if year != 0 {
		records = Filter(records, core.FilterSpec{Years: []int{year}})
	}
	key := func(r core.SalesRecord) string {
		if year != 0 {
			return r.Month
		}
		return r.Month + " " + strconv.Itoa(r.Year)
	}
	out := group(records, key, func(r core.SalesRecord, k string) core.AggregateBucket {
		return core.AggregateBucket{Key: k, Year: r.Year, MonthNumber: r.MonthNumber}
	})
	slices.SortStableFunc(out, func(a, b core.AggregateBucket) int {
		if c := cmp.Compare(a.MonthNumber, b.MonthNumber); c != 0 {
			return c
		}
		return cmp.Compare(a.Year, b.Year)
	})
	return out
}

// CategoryTotals groups records by category in order of first appearance.
// Categories with no records produce no bucket.
func CategoryTotals(records []core.SalesRecord) []core.AggregateBucket {
	return group(records,
		func(r core.SalesRecord) string { return r.Category },
		func(_ core.SalesRecord, k string) core.AggregateBucket {
			return core.AggregateBucket{Key: k}
		})
}
