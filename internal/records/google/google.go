// Package google reads and writes the sales dataset in a Google Sheets
// spreadsheet. The sheet holds one header row followed by one record per row,
// in any column order; headers are matched by name.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"salesdash/internal/core"
	"salesdash/internal/records"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "Sales"

var (
	ErrMissingSpreadsheetID = errors.New("missing GOOGLE_SPREADSHEET_ID")
	ErrMissingCredentials   = errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	ErrNotInitialized       = errors.New("sheets service not initialized")
)

// Options configures a Client. Empty credential fields fall back to
// GOOGLE_APPLICATION_CREDENTIALS.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

var (
	_ records.Loader = (*Client)(nil)
	_ records.Writer = (*Client)(nil)
)

// New creates a client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, ErrMissingSpreadsheetID
	}
	creds, err := readCredentials(ctx, opts.CredentialsJSON, opts.CredentialsFile)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", opts.SpreadsheetID)
	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheet string) *Client {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		sheet = DefaultSheetName
	}
	return &Client{svc: svc, spreadsheetID: strings.TrimSpace(spreadsheetID), sheet: sheet}
}

func readCredentials(ctx context.Context, inline, file string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials", "json_length", len(inline))
		return []byte(inline), nil
	case file != "":
		slog.DebugContext(ctx, "Reading service account credentials", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, ErrMissingCredentials
	}
}

// Load reads the whole sheet. An empty sheet yields no records.
func (c *Client) Load(ctx context.Context) ([]core.SalesRecord, error) {
	if c.svc == nil {
		return nil, ErrNotInitialized
	}
	rng := c.sheet + "!A:I"
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	recs, err := parseValues(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Loaded sales records from sheet", "sheet", c.sheet, "count", len(recs))
	return recs, nil
}

// ReplaceAll clears the sheet and writes a header plus one row per record.
func (c *Client) ReplaceAll(ctx context.Context, recs []core.SalesRecord) error {
	if c.svc == nil {
		return ErrNotInitialized
	}
	rng := c.sheet + "!A:I"
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	vr := &gsheet.ValueRange{Values: toValues(recs)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.sheet+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", c.sheet, err)
	}
	slog.InfoContext(ctx, "Wrote sales records to sheet", "sheet", c.sheet, "count", len(recs))
	return nil
}

// parseValues converts a Sheets values matrix into records, using the first
// row as header.
func parseValues(values [][]interface{}) ([]core.SalesRecord, error) {
	if len(values) == 0 {
		return []core.SalesRecord{}, nil
	}
	rows := make([][]string, 0, len(values)-1)
	for _, v := range values[1:] {
		rows = append(rows, toStrings(v))
	}
	return records.ParseTable(toStrings(values[0]), rows)
}

func toValues(recs []core.SalesRecord) [][]interface{} {
	out := make([][]interface{}, 0, len(recs)+1)
	header := make([]interface{}, 0, len(records.Columns)+1)
	header = append(header, "ID")
	for _, c := range records.Columns {
		header = append(header, c)
	}
	out = append(out, header)
	for _, r := range recs {
		row := []interface{}{r.ID, r.Year, r.Month, r.Category, r.Region, r.Product, r.Revenue, r.Units}
		out = append(out, row)
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
