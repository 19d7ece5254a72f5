package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"salesdash/internal/records"
	"salesdash/internal/report"
)

// PDFExporter writes a landscape A4 report: KPIs, the category breakdown and
// then every row.
// Labels are UTF-8; the core fonts are cp1252, so every label goes through a
// translator before it reaches a cell.
type PDFExporter struct {
	fontFamily string
	fontSize   float64
	compress   bool
}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{fontFamily: "Arial", fontSize: 9, compress: true}
}

func (p *PDFExporter) Export(data *Data, w io.Writer) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(p.compress)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(false, 10)
	pdf.AddPage()

	pdf.SetFont(p.fontFamily, "B", 16)
	pdf.Cell(0, 10, tr(data.Title))
	pdf.Ln(10)
	pdf.SetFont(p.fontFamily, "I", 8)
	pdf.Cell(0, 5, fmt.Sprintf("Generated: %s  |  %d records", data.GeneratedAt.UTC().Format("2006-01-02 15:04:05"), len(data.Records)))
	pdf.Ln(9)

	pdf.SetFont(p.fontFamily, "B", 11)
	pdf.Cell(0, 6, "Key metrics")
	pdf.Ln(7)
	pdf.SetFont(p.fontFamily, "", p.fontSize)
	for _, k := range report.KPIs(data.Metrics) {
		pdf.CellFormat(45, 5, tr(k.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(45, 5, tr(k.Value), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	if shares := report.Shares(data.Categories); len(shares) > 0 {
		pdf.SetFont(p.fontFamily, "B", 11)
		pdf.Cell(0, 6, "Revenue by category")
		pdf.Ln(7)
		widths := []float64{60, 40, 25}
		p.header(pdf, []string{"Category", "Revenue", "Share"}, widths)
		for _, s := range shares {
			pdf.CellFormat(widths[0], 6, tr(s.Name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, report.FormatCurrency(s.Revenue), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[2], 6, s.Percent.StringFixed(1)+"%", "1", 1, "R", false, 0, "")
		}
		pdf.Ln(6)
	}

	pageWidth, pageHeight := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(records.Columns))
	widths := make([]float64, len(records.Columns))
	for i := range widths {
		widths[i] = colWidth
	}

	p.header(pdf, records.Columns, widths)
	for i, r := range data.Records {
		if pdf.GetY()+6 > pageHeight-bottom {
			pdf.AddPage()
			p.header(pdf, records.Columns, widths)
		}
		fill := i%2 == 1
		if fill {
			pdf.SetFillColor(242, 242, 242)
		}
		cells := []string{
			strconv.Itoa(r.Year), tr(r.Month), tr(r.Category), tr(r.Region), tr(r.Product),
			report.FormatAmount(r.Revenue), strconv.Itoa(r.Units),
		}
		for j, v := range cells {
			align := "L"
			if j == 5 || j == 6 {
				align = "R"
			}
			pdf.CellFormat(widths[j], 6, v, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (p *PDFExporter) header(pdf *gofpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFont(p.fontFamily, "B", p.fontSize)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range cols {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(p.fontFamily, "", p.fontSize)
}

func (p *PDFExporter) ContentType() string { return "application/pdf" }

func (p *PDFExporter) Extension() string { return ".pdf" }
