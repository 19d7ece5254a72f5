// Package analytics holds the pure filtering, aggregation and metrics
// functions of the dashboard. Nothing here does I/O or keeps state.
package analytics

import (
	"slices"

	"salesdash/internal/core"
)

// Filter returns the records that satisfy spec, preserving input order.
// A spec with every dimension empty and a zero threshold returns all records.
func Filter(records []core.SalesRecord, spec core.FilterSpec) []core.SalesRecord {
	out := make([]core.SalesRecord, 0, len(records))
	for _, r := range records {
		if Matches(r, spec) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether a single record passes every active filter.
func Matches(r core.SalesRecord, spec core.FilterSpec) bool {
	if len(spec.Years) > 0 && !slices.Contains(spec.Years, r.Year) {
		return false
	}
	if len(spec.Categories) > 0 && !slices.Contains(spec.Categories, r.Category) {
		return false
	}
	if len(spec.Regions) > 0 && !slices.Contains(spec.Regions, r.Region) {
		return false
	}
	if len(spec.Products) > 0 && !slices.Contains(spec.Products, r.Product) {
		return false
	}
	if spec.Threshold > 0 && r.Revenue < spec.Threshold {
		return false
	}
	return true
}
