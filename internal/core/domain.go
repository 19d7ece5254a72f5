package core

import (
	"errors"
	"math"
	"strings"
)

// Reference years used by year-over-year growth. They are fixed, not derived
// from the data being measured.
const (
	CurrentYear  = 2024
	PreviousYear = 2023
)

type (
	// SalesRecord is one row of the dataset. Records are created once at load
	// time and never mutated.
	SalesRecord struct {
		ID          string  `json:"id"`
		Year        int     `json:"year"`
		Month       string  `json:"month"`
		MonthNumber int     `json:"monthNumber"`
		Revenue     float64 `json:"revenue"`
		Units       int     `json:"units"`
		Category    string  `json:"category"`
		Region      string  `json:"region"`
		Product     string  `json:"product"`
	}
)

var (
	ErrEmptyID         = errors.New("empty record id")
	ErrInvalidYear     = errors.New("invalid year")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidRevenue  = errors.New("invalid revenue")
	ErrInvalidUnits    = errors.New("invalid units")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyRegion     = errors.New("empty region")
	ErrEmptyProduct    = errors.New("empty product")
	ErrDuplicateRecord = errors.New("duplicate record id")
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// DefaultYears returns the full year range of the reference dataset.
func DefaultYears() []int {
	return []int{2022, 2023, 2024}
}

// MonthName returns the display label for a month number (1-12), or "" when
// the number is out of range.
func MonthName(n int) string {
	if n < 1 || n > 12 {
		return ""
	}
	return monthNames[n-1]
}

// MonthNumber resolves a month label to its number. Full names and three
// letter abbreviations are accepted, case-insensitively. Unknown labels
// return 0.
func MonthNumber(name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}
	for i, m := range monthNames {
		if strings.EqualFold(m, name) || strings.EqualFold(m[:3], name) {
			return i + 1
		}
	}
	return 0
}

// NewSalesRecord builds a validated record. The month label is derived from
// monthNumber.
func NewSalesRecord(id string, year, monthNumber int, revenue float64, units int, category, region, product string) (SalesRecord, error) {
	r := SalesRecord{
		ID:          strings.TrimSpace(id),
		Year:        year,
		Month:       MonthName(monthNumber),
		MonthNumber: monthNumber,
		Revenue:     revenue,
		Units:       units,
		Category:    strings.TrimSpace(category),
		Region:      strings.TrimSpace(region),
		Product:     strings.TrimSpace(product),
	}
	if err := r.Validate(); err != nil {
		return SalesRecord{}, err
	}
	return r, nil
}

func (r SalesRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if r.Year < 1 {
		return ErrInvalidYear
	}
	if r.MonthNumber < 1 || r.MonthNumber > 12 || r.Month != monthNames[r.MonthNumber-1] {
		return ErrInvalidMonth
	}
	if r.Revenue < 0 || math.IsNaN(r.Revenue) || math.IsInf(r.Revenue, 0) {
		return ErrInvalidRevenue
	}
	if r.Units < 0 {
		return ErrInvalidUnits
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(r.Region) == "" {
		return ErrEmptyRegion
	}
	if strings.TrimSpace(r.Product) == "" {
		return ErrEmptyProduct
	}
	return nil
}
