package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salesdash/internal/core"
	"salesdash/internal/records"
)

func sample(t *testing.T) []core.SalesRecord {
	t.Helper()
	mk := func(id string, year, month int, rev float64, units int, cat string) core.SalesRecord {
		r, err := core.NewSalesRecord(id, year, month, rev, units, cat, "Europe", "Widget")
		require.NoError(t, err)
		return r
	}
	return []core.SalesRecord{
		mk("1", 2023, 1, 100, 10, "A"),
		mk("2", 2024, 2, 150, 12, "A"),
		mk("3", 2024, 3, 5, 1, "B"),
	}
}

var fixedNow = time.Date(2024, 5, 17, 13, 45, 0, 0, time.UTC)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatCSV},
		{"CSV", FormatCSV},
		{"xlsx", FormatXLSX},
		{"excel", FormatXLSX},
		{" pdf ", FormatPDF},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("docx")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "sales-data-2024-05-17.csv", Filename(FormatCSV, fixedNow))
	assert.Equal(t, "sales-data-2024-05-17.pdf", Filename(FormatPDF, fixedNow))

	late := time.Date(2024, 5, 17, 23, 30, 0, 0, time.FixedZone("x", -5*3600))
	assert.Equal(t, "sales-data-2024-05-18.xlsx", Filename(FormatXLSX, late))
}

func TestBuildAppliesFilter(t *testing.T) {
	spec := core.DefaultFilterSpec().SetThreshold(120)
	data := Build(sample(t), spec, fixedNow)

	require.Len(t, data.Records, 1)
	assert.Equal(t, "2", data.Records[0].ID)
	assert.Equal(t, 150.0, data.Metrics.TotalRevenue)
	require.Len(t, data.Categories, 1)
	assert.Equal(t, "A", data.Categories[0].Key)
}

func TestCSVExport(t *testing.T) {
	data := Build(sample(t), core.DefaultFilterSpec(), fixedNow)

	var buf bytes.Buffer
	require.NoError(t, Write(FormatCSV, data, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, records.Columns, rows[0])
	assert.Equal(t, []string{"2023", "January", "A", "Europe", "Widget", "100", "10"}, rows[1])

	back, err := records.ParseTable(rows[0], rows[1:])
	require.NoError(t, err)
	assert.Equal(t, 255.0, back[0].Revenue+back[1].Revenue+back[2].Revenue)
}

func TestCSVExportEmpty(t *testing.T) {
	data := Build(nil, core.DefaultFilterSpec(), fixedNow)

	var buf bytes.Buffer
	require.NoError(t, NewCSVExporter().Export(data, &buf))
	assert.Equal(t, "Year,Month,Category,Region,Product,Revenue,Units\n", buf.String())
}

func TestExcelExport(t *testing.T) {
	data := Build(sample(t), core.DefaultFilterSpec(), fixedNow)

	var buf bytes.Buffer
	require.NoError(t, Write(FormatXLSX, data, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{dataSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(dataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, records.Columns, rows[0])
	assert.Equal(t, "January", rows[1][1])
	assert.Equal(t, "B", rows[3][2])

	label, err := f.GetCellValue(summarySheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, "Total Revenue", label)
}

func TestPDFExport(t *testing.T) {
	recs := sample(t)
	// enough rows to force a page break
	for i := 0; i < 80; i++ {
		r := recs[i%len(recs)]
		r.ID = fmt.Sprintf("p%d", i)
		recs = append(recs, r)
	}
	data := Build(recs, core.DefaultFilterSpec(), fixedNow)

	var buf bytes.Buffer
	require.NoError(t, Write(FormatPDF, data, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestPDFExportNonASCIILabels(t *testing.T) {
	r, err := core.NewSalesRecord("1", 2024, 1, 120, 3, "Café", "Zürich", "Crème")
	require.NoError(t, err)
	data := Build([]core.SalesRecord{r}, core.DefaultFilterSpec(), fixedNow)

	p := NewPDFExporter()
	p.compress = false
	var buf bytes.Buffer
	require.NoError(t, p.Export(data, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	// cp1252 single bytes, not the raw UTF-8 pairs
	assert.Contains(t, buf.String(), "Caf\xe9")
	assert.Contains(t, buf.String(), "Z\xfcrich")
	assert.NotContains(t, buf.String(), "Café")
}

func TestNewExporters(t *testing.T) {
	for _, f := range Formats() {
		e, err := New(f)
		require.NoError(t, err)
		assert.Equal(t, "."+string(f), e.Extension())
		assert.NotEmpty(t, e.ContentType())
	}
	_, err := New(Format("odt"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
