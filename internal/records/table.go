package records

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"salesdash/internal/core"
)

// Columns is the stable field order used by tabular exports and accepted by
// ParseTable.
var Columns = []string{"Year", "Month", "Category", "Region", "Product", "Revenue", "Units"}

var ErrMissingColumn = errors.New("missing column")

// ParseTable converts a header row plus data rows into records. Columns are
// matched by header name, case-insensitively, so their order does not
// matter. An "ID" column is optional; without it rows get sequential IDs.
// Blank rows are skipped and any malformed row fails the whole table.
func ParseTable(header []string, rows [][]string) ([]core.SalesRecord, error) {
	col := func(name string) int { return indexOf(header, name) }
	idx := map[string]int{}
	var missing []string
	for _, name := range Columns {
		i := col(name)
		if i == -1 {
			missing = append(missing, name)
		}
		idx[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s; got headers=%v", ErrMissingColumn, strings.Join(missing, ","), header)
	}
	idCol := col("ID")

	out := make([]core.SalesRecord, 0, len(rows))
	for n, row := range rows {
		if isBlank(row) {
			continue
		}
		line := n + 2 // 1-based, after the header
		year, err := strconv.Atoi(safeGet(row, idx["Year"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %q", line, core.ErrInvalidYear, safeGet(row, idx["Year"]))
		}
		month := parseMonth(safeGet(row, idx["Month"]))
		revenue, err := parseAmount(safeGet(row, idx["Revenue"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %v", line, core.ErrInvalidRevenue, err)
		}
		units, err := strconv.Atoi(strings.ReplaceAll(safeGet(row, idx["Units"]), ",", ""))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %q", line, core.ErrInvalidUnits, safeGet(row, idx["Units"]))
		}
		id := strconv.Itoa(len(out) + 1)
		if idCol != -1 {
			id = safeGet(row, idCol)
		}
		rec, err := core.NewSalesRecord(id, year, month, revenue, units,
			safeGet(row, idx["Category"]), safeGet(row, idx["Region"]), safeGet(row, idx["Product"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Row renders a record in Columns order.
func Row(r core.SalesRecord) []string {
	return []string{
		strconv.Itoa(r.Year),
		r.Month,
		r.Category,
		r.Region,
		r.Product,
		strconv.FormatFloat(r.Revenue, 'f', -1, 64),
		strconv.Itoa(r.Units),
	}
}

// parseMonth accepts a month name, abbreviation or number.
func parseMonth(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return core.MonthNumber(s)
}

// parseAmount accepts plain numbers and formatted currency like "$1,234.50".
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	return strconv.ParseFloat(s, 64)
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return strings.TrimSpace(arr[idx])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
