package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"salesdash/internal/records"
	"salesdash/internal/report"
)

const (
	dataSheet    = "Sales"
	summarySheet = "Summary"
)

// ExcelExporter writes a workbook with the rows on one sheet and the KPI
// summary on another.
type ExcelExporter struct{}

func NewExcelExporter() *ExcelExporter { return &ExcelExporter{} }

func (e *ExcelExporter) Export(data *Data, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("create money style: %w", err)
	}

	for i, h := range records.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(dataSheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(records.Columns))
	if err := f.SetCellStyle(dataSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range data.Records {
		row := i + 2
		values := []any{r.Year, r.Month, r.Category, r.Region, r.Product, r.Revenue, r.Units}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(dataSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}
	lastRow := len(data.Records) + 1
	if len(data.Records) > 0 {
		if err := f.SetCellStyle(dataSheet, "F2", fmt.Sprintf("F%d", lastRow), moneyStyle); err != nil {
			return fmt.Errorf("style revenue: %w", err)
		}
	}

	_ = f.SetColWidth(dataSheet, "C", "E", 22)
	if err := f.SetPanes(dataSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if err := f.AutoFilter(dataSheet, fmt.Sprintf("A1:%s%d", lastCol, lastRow), nil); err != nil {
		return fmt.Errorf("auto filter: %w", err)
	}

	if err := e.writeSummary(f, data, headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func (e *ExcelExporter) writeSummary(f *excelize.File, data *Data, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	_ = f.SetCellValue(summarySheet, "A1", data.Title)
	_ = f.SetCellValue(summarySheet, "A2", "Generated "+data.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))

	row := 4
	for _, k := range report.KPIs(data.Metrics) {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), k.Label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), k.Value)
		row++
	}

	row++
	_ = f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &[]any{"Category", "Revenue", "Share %"})
	_ = f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), headerStyle)
	for _, s := range report.Shares(data.Categories) {
		row++
		rev, _ := s.Revenue.Float64()
		pct, _ := s.Percent.Float64()
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &[]any{s.Name, rev, pct}); err != nil {
			return fmt.Errorf("write category row: %w", err)
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 24)
	_ = f.SetColWidth(summarySheet, "B", "C", 18)
	return nil
}

func (e *ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *ExcelExporter) Extension() string { return ".xlsx" }
