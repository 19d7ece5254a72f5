// Package export renders a filtered record set as CSV, XLSX or PDF.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"salesdash/internal/analytics"
	"salesdash/internal/core"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatXLSX, FormatPDF}
}

// ParseFormat accepts a format name, case-insensitively. "excel" is an alias
// for xlsx; an empty string means csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) String() string { return string(f) }

// Filename is "sales-data-YYYY-MM-DD.<ext>" for the UTC date of t.
func Filename(f Format, t time.Time) string {
	return fmt.Sprintf("sales-data-%s.%s", t.UTC().Format("2006-01-02"), f)
}

// Exporter writes Data in one format.
type Exporter interface {
	Export(data *Data, w io.Writer) error
	ContentType() string
	Extension() string
}

// New returns the exporter for f.
func New(f Format) (Exporter, error) {
	switch f {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatXLSX:
		return NewExcelExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Data is everything an export needs: the filtered rows plus the summary
// views derived from them.
type Data struct {
	Title       string
	GeneratedAt time.Time
	Filters     core.FilterSpec
	Records     []core.SalesRecord
	Metrics     core.MetricSet
	Categories  []core.AggregateBucket
}

// Build filters records by spec and derives the summary views.
func Build(records []core.SalesRecord, spec core.FilterSpec, now time.Time) *Data {
	filtered := analytics.Filter(records, spec)
	return &Data{
		Title:       "Sales Data",
		GeneratedAt: now,
		Filters:     spec,
		Records:     filtered,
		Metrics:     analytics.ComputeMetrics(filtered),
		Categories:  analytics.CategoryTotals(filtered),
	}
}

// Write builds the exporter for f and writes data to w.
func Write(f Format, data *Data, w io.Writer) error {
	e, err := New(f)
	if err != nil {
		return err
	}
	return e.Export(data, w)
}
