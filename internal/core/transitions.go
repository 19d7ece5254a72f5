package core

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// ActionType names a user interaction that replaces the filter state.
type ActionType string

const (
	ActionSetYears       ActionType = "setYears"
	ActionToggleCategory ActionType = "toggleCategory"
	ActionToggleRegion   ActionType = "toggleRegion"
	ActionToggleProduct  ActionType = "toggleProduct"
	ActionSetThreshold   ActionType = "setThreshold"
	ActionSetChartType   ActionType = "setChartType"
	ActionReset          ActionType = "reset"
	ActionClearAll       ActionType = "clearAll"
	ActionQuickFilter    ActionType = "quickFilter"
)

// QuickFilter is a named canned filter combination.
type QuickFilter string

const (
	QuickCurrentYear QuickFilter = "current-year"
	QuickElectronics QuickFilter = "electronics"
	QuickHighRevenue QuickFilter = "high-revenue"
)

// HighRevenueThreshold is the cutoff applied by the high-revenue preset.
const HighRevenueThreshold = 100000

// Action is the wire form of a transition. Value carries the category,
// region, product, chart type or preset name depending on Type.
type Action struct {
	Type      ActionType `json:"type"`
	Years     []int      `json:"years,omitempty"`
	Value     string     `json:"value,omitempty"`
	Threshold float64    `json:"threshold,omitempty"`
}

// QuickFilters lists the known presets in display order.
func QuickFilters() []QuickFilter {
	return []QuickFilter{QuickCurrentYear, QuickElectronics, QuickHighRevenue}
}

// SetYears replaces the year selection. Non-positive years are dropped.
func (s FilterSpec) SetYears(years []int) FilterSpec {
	next := s.Clone()
	next.Years = next.Years[:0]
	for _, y := range uniqueInts(years) {
		if y > 0 {
			next.Years = append(next.Years, y)
		}
	}
	return next
}

// ToggleCategory adds the category when absent and removes it when present.
func (s FilterSpec) ToggleCategory(category string) FilterSpec {
	next := s.Clone()
	next.Categories = toggle(next.Categories, category)
	return next
}

func (s FilterSpec) ToggleRegion(region string) FilterSpec {
	next := s.Clone()
	next.Regions = toggle(next.Regions, region)
	return next
}

func (s FilterSpec) ToggleProduct(product string) FilterSpec {
	next := s.Clone()
	next.Products = toggle(next.Products, product)
	return next
}

// SetThreshold sets the minimum revenue. Negative and non-finite values
// become 0.
func (s FilterSpec) SetThreshold(n float64) FilterSpec {
	next := s.Clone()
	if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		n = 0
	}
	next.Threshold = n
	return next
}

// SetChartType changes the display preference. Unknown types leave the
// spec as it was.
func (s FilterSpec) SetChartType(c ChartType) FilterSpec {
	next := s.Clone()
	if c.IsValid() {
		next.ChartType = c
	}
	return next
}

// Reset returns the default spec.
func (s FilterSpec) Reset() FilterSpec {
	return DefaultFilterSpec()
}

// ClearAll drops every data filter but keeps the chart type.
func (s FilterSpec) ClearAll() FilterSpec {
	next := DefaultFilterSpec()
	if s.ChartType.IsValid() {
		next.ChartType = s.ChartType
	}
	return next
}

// ApplyQuickFilter merges a preset into the filter. Fields the preset does not
// name are kept. Unknown presets leave it unchanged.
func (s FilterSpec) ApplyQuickFilter(p QuickFilter) FilterSpec {
	next := s.Clone()
	switch p {
	case QuickCurrentYear:
		next.Years = []int{CurrentYear}
		next.Categories = []string{}
		next.Regions = []string{}
	case QuickElectronics:
		next.Categories = []string{"Electronics"}
		next.Regions = []string{}
	case QuickHighRevenue:
		next.Threshold = HighRevenueThreshold
	}
	return next
}

// Reduce applies an action to a filter spec. Invalid actions return the input
// spec unchanged together with an error, so the result is always valid.
func Reduce(s FilterSpec, a Action) (FilterSpec, error) {
	switch a.Type {
	case ActionSetYears:
		for _, y := range a.Years {
			if y < 1 {
				return s, fmt.Errorf("%w: %d", ErrInvalidFilterYear, y)
			}
		}
		return s.SetYears(a.Years), nil
	case ActionToggleCategory, ActionToggleRegion, ActionToggleProduct:
		v := strings.TrimSpace(a.Value)
		if v == "" {
			return s, fmt.Errorf("%s: %w", a.Type, ErrEmptyFilterValue)
		}
		switch a.Type {
		case ActionToggleCategory:
			return s.ToggleCategory(v), nil
		case ActionToggleRegion:
			return s.ToggleRegion(v), nil
		default:
			return s.ToggleProduct(v), nil
		}
	case ActionSetThreshold:
		if a.Threshold < 0 || math.IsNaN(a.Threshold) || math.IsInf(a.Threshold, 0) {
			return s, fmt.Errorf("%w: %v", ErrInvalidThreshold, a.Threshold)
		}
		return s.SetThreshold(a.Threshold), nil
	case ActionSetChartType:
		c, err := ParseChartType(a.Value)
		if err != nil {
			return s, err
		}
		return s.SetChartType(c), nil
	case ActionReset:
		return s.Reset(), nil
	case ActionClearAll:
		return s.ClearAll(), nil
	case ActionQuickFilter:
		p := QuickFilter(strings.TrimSpace(a.Value))
		if !slices.Contains(QuickFilters(), p) {
			return s, fmt.Errorf("%w: %q", ErrUnknownQuickFilter, a.Value)
		}
		return s.ApplyQuickFilter(p), nil
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}

func toggle(set []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return set
	}
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(set, i, i+1)
	}
	return append(set, v)
}
