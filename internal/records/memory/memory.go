// Package memory provides the in-process record source: either a CSV file
// found in the data directory or the seeded generator.
package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"salesdash/internal/core"
	"salesdash/internal/records"
)

// SeedFile is the optional dataset looked up in the data directory.
const SeedFile = "sales_records.csv"

// Loader returns a fixed dataset.
type Loader struct {
	records []core.SalesRecord
	source  string
}

var _ records.Loader = (*Loader)(nil)

// New wraps an existing slice.
func New(recs []core.SalesRecord) *Loader {
	return &Loader{records: recs, source: "static"}
}

// NewGenerated uses the mock generator with the given seed.
func NewGenerated(seed uint64) *Loader {
	return &Loader{records: Generate(seed), source: "generator"}
}

// NewFromFiles loads <base>/sales_records.csv when it exists and falls back
// to the generator otherwise. A present but unreadable file is an error.
func NewFromFiles(base string, seed uint64) (*Loader, error) {
	path := filepath.Join(base, SeedFile)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewGenerated(seed), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	recs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &Loader{records: recs, source: path}, nil
}

// ReadCSV parses a CSV with a header row in the export column layout.
func ReadCSV(r io.Reader) ([]core.SalesRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return []core.SalesRecord{}, nil
	}
	return records.ParseTable(rows[0], rows[1:])
}

func (l *Loader) Load(ctx context.Context) ([]core.SalesRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]core.SalesRecord(nil), l.records...), nil
}

// Source describes where the records came from.
func (l *Loader) Source() string { return l.source }
