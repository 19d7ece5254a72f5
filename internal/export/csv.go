package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"salesdash/internal/records"
)

// CSVExporter writes the header row and one line per record.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter { return &CSVExporter{} }

func (e *CSVExporter) Export(data *Data, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(records.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range data.Records {
		if err := cw.Write(records.Row(r)); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

func (e *CSVExporter) Extension() string { return ".csv" }
