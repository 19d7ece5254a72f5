package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ChartType is a display preference carried with the filter state. It has no
// effect on filtering or aggregation.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
)

var (
	ErrInvalidThreshold   = errors.New("invalid sales threshold")
	ErrInvalidChartType   = errors.New("invalid chart type")
	ErrEmptyFilterValue   = errors.New("empty filter value")
	ErrInvalidFilterYear  = errors.New("invalid filter year")
	ErrUnknownAction      = errors.New("unknown filter action")
	ErrUnknownQuickFilter = errors.New("unknown quick filter")
)

func (c ChartType) IsValid() bool {
	switch c {
	case ChartBar, ChartLine, ChartPie:
		return true
	default:
		return false
	}
}

func (c ChartType) String() string { return string(c) }

// ParseChartType accepts a chart type name case-insensitively.
func ParseChartType(s string) (ChartType, error) {
	c := ChartType(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidChartType, s)
	}
	return c, nil
}

// FilterSpec describes the active filter criteria. An empty set means the
// dimension is unrestricted; a zero threshold means no revenue cutoff.
//
// Specs are values: every transition returns a new spec and never touches the
// slices of the receiver.
type FilterSpec struct {
	Years      []int     `json:"years"`
	Categories []string  `json:"categories"`
	Regions    []string  `json:"regions"`
	Products   []string  `json:"products"`
	Threshold  float64   `json:"threshold"`
	ChartType  ChartType `json:"chartType"`
}

// DefaultFilterSpec is the reset state: all reference years selected,
// nothing else restricted, bar chart.
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		Years:      DefaultYears(),
		Categories: []string{},
		Regions:    []string{},
		Products:   []string{},
		Threshold:  0,
		ChartType:  ChartBar,
	}
}

// NewFilterSpec builds a normalized, validated spec. Duplicate values are
// dropped and an empty chart type falls back to bar.
func NewFilterSpec(years []int, categories, regions, products []string, threshold float64, chart ChartType) (FilterSpec, error) {
	if chart == "" {
		chart = ChartBar
	}
	s := FilterSpec{
		Years:      uniqueInts(years),
		Categories: uniqueStrings(categories),
		Regions:    uniqueStrings(regions),
		Products:   uniqueStrings(products),
		Threshold:  threshold,
		ChartType:  chart,
	}
	if err := s.Validate(); err != nil {
		return FilterSpec{}, err
	}
	return s, nil
}

func (s FilterSpec) Validate() error {
	if s.Threshold < 0 || math.IsNaN(s.Threshold) || math.IsInf(s.Threshold, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, s.Threshold)
	}
	if !s.ChartType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidChartType, s.ChartType)
	}
	for _, y := range s.Years {
		if y < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidFilterYear, y)
		}
	}
	for _, set := range [][]string{s.Categories, s.Regions, s.Products} {
		for _, v := range set {
			if strings.TrimSpace(v) == "" {
				return ErrEmptyFilterValue
			}
		}
	}
	return nil
}

// Clone returns a deep copy with non-nil slices.
func (s FilterSpec) Clone() FilterSpec {
	return FilterSpec{
		Years:      append([]int{}, s.Years...),
		Categories: append([]string{}, s.Categories...),
		Regions:    append([]string{}, s.Regions...),
		Products:   append([]string{}, s.Products...),
		Threshold:  s.Threshold,
		ChartType:  s.ChartType,
	}
}

// dataKey is the JSON form hashed into DataKey. Every value is quoted, so
// labels containing separators cannot alias another spec.
type dataKey struct {
	Years      []int    `json:"y"`
	Categories []string `json:"c"`
	Regions    []string `json:"r"`
	Products   []string `json:"p"`
	Threshold  string   `json:"t"`
}

// DataKey is a canonical string for the data-affecting fields. Two specs with
// the same key select the same records; chart type is not part of it.
func (s FilterSpec) DataKey() string {
	sorted := func(in []string) []string {
		c := append([]string{}, in...)
		slices.Sort(c)
		return c
	}
	years := append([]int{}, s.Years...)
	slices.Sort(years)
	b, _ := json.Marshal(dataKey{
		Years:      years,
		Categories: sorted(s.Categories),
		Regions:    sorted(s.Regions),
		Products:   sorted(s.Products),
		Threshold:  strconv.FormatFloat(s.Threshold, 'f', -1, 64),
	})
	return string(b)
}

// ActiveFilterCount counts restricted dimensions. A year selection counts
// only when it is non-empty and misses at least one reference year.
func ActiveFilterCount(s FilterSpec) int {
	n := 0
	if len(s.Categories) > 0 {
		n++
	}
	if len(s.Regions) > 0 {
		n++
	}
	if len(s.Products) > 0 {
		n++
	}
	if s.Threshold > 0 {
		n++
	}
	if len(s.Years) > 0 {
		for _, y := range DefaultYears() {
			if !slices.Contains(s.Years, y) {
				n++
				break
			}
		}
	}
	return n
}

func uniqueInts(in []int) []int {
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
