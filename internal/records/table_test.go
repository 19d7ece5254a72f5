package records

import (
	"errors"
	"reflect"
	"testing"

	"salesdash/internal/core"
)

func TestParseTableByHeaderName(t *testing.T) {
	header := []string{"Region", "units", "ID", "Year", "Month", "Category", "Product", "Revenue", "Notes"}
	rows := [][]string{
		{"Europe", "10", "r-1", "2023", "January", "Books", "Fiction Novels", "$1,000.50", "x"},
		{"", "", "", "", "", "", "", "", ""},
		{"Asia Pacific", "3", "r-2", "2024", "12", "Sports", "Outdoor Gear", "450"},
	}
	recs, err := ParseTable(header, rows)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	if recs[0].ID != "r-1" || recs[0].Revenue != 1000.5 || recs[0].Units != 10 {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Month != "December" || recs[1].MonthNumber != 12 {
		t.Fatalf("numeric month not resolved: %+v", recs[1])
	}
}

func TestParseTableErrors(t *testing.T) {
	if _, err := ParseTable([]string{"Year", "Month"}, nil); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}

	cases := []struct {
		name string
		row  []string
		want error
	}{
		{"bad year", []string{"x", "January", "A", "B", "C", "1", "1"}, core.ErrInvalidYear},
		{"bad month", []string{"2024", "Smarch", "A", "B", "C", "1", "1"}, core.ErrInvalidMonth},
		{"bad revenue", []string{"2024", "May", "A", "B", "C", "lots", "1"}, core.ErrInvalidRevenue},
		{"negative revenue", []string{"2024", "May", "A", "B", "C", "-1", "1"}, core.ErrInvalidRevenue},
		{"bad units", []string{"2024", "May", "A", "B", "C", "1", "1.5"}, core.ErrInvalidUnits},
		{"missing product", []string{"2024", "May", "A", "B", "", "1", "1"}, core.ErrEmptyProduct},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTable(Columns, [][]string{tc.row})
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRowFollowsColumns(t *testing.T) {
	r, _ := core.NewSalesRecord("1", 2024, 3, 1234.5, 7, "Books", "Europe", "Digital Guides")
	got := Row(r)
	want := []string{"2024", "March", "Books", "Europe", "Digital Guides", "1234.5", "7"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Row = %v, want %v", got, want)
	}
	back, err := ParseTable(Columns, [][]string{got})
	if err != nil || back[0].Revenue != r.Revenue || back[0].Month != r.Month {
		t.Fatalf("row did not parse back: %+v err=%v", back, err)
	}
}
