// Package storage keeps the sales dataset in an embedded SQLite database.
// The repository is a record source for the dashboard and a seeding target
// for salesctl; the dashboard never writes to it.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"salesdash/internal/core"
	"salesdash/internal/records"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ records.Loader = (*SQLiteRepository)(nil)
	_ records.Writer = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load returns every stored record in insertion order. Rows are validated
// on the way out, so a hand-edited database cannot smuggle in bad data.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.SalesRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, year, month_number, revenue, units, category, region, product
		FROM sales_records
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query sales records: %w", err)
	}
	defer rows.Close()

	out := make([]core.SalesRecord, 0)
	for rows.Next() {
		var (
			id, category, region, product string
			year, month, units            int
			revenue                       float64
		)
		if err := rows.Scan(&id, &year, &month, &revenue, &units, &category, &region, &product); err != nil {
			return nil, fmt.Errorf("scan sales record: %w", err)
		}
		rec, err := core.NewSalesRecord(id, year, month, revenue, units, category, region, product)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales records: %w", err)
	}

	slog.InfoContext(ctx, "Loaded sales records from SQLite", "count", len(out))
	return out, nil
}

// ReplaceAll swaps the stored dataset in one transaction. Records are
// validated first; nothing is written when any of them is invalid.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, recs []core.SalesRecord) error {
	if _, err := records.NewStore(recs); err != nil {
		return fmt.Errorf("validate records: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM sales_records`); err != nil {
		return fmt.Errorf("clear sales records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_records (id, position, year, month_number, revenue, units, category, region, product)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range recs {
		if _, err := stmt.ExecContext(ctx, rec.ID, i, rec.Year, rec.MonthNumber, rec.Revenue,
			rec.Units, rec.Category, rec.Region, rec.Product); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	slog.InfoContext(ctx, "Replaced sales records in SQLite", "count", len(recs))
	return nil
}

// Count returns the number of stored records.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales records: %w", err)
	}
	return n, nil
}
