package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salesdash/internal/amqp"
	"salesdash/internal/core"
	"salesdash/internal/export"
	"salesdash/internal/log"
)

// RecordSource is the read side of the record store.
type RecordSource interface {
	All() []core.SalesRecord
}

// ExportWorker turns export requests into files under a directory.
type ExportWorker struct {
	source RecordSource
	dir    string
	logger *log.StructuredLogger
	now    func() time.Time
}

func NewExportWorker(source RecordSource, dir string, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		source: source,
		dir:    dir,
		logger: log.NewStructuredLogger(logger.WithComponent(log.ComponentWorker)),
		now:    time.Now,
	}
}

// HandleExportRequest filters the store with the request's filters and
// writes the file. The file appears under its final name only once complete.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, req *amqp.ExportRequest) error {
	_, err := w.Export(ctx, req)
	return err
}

// Export is HandleExportRequest returning the written path.
func (w *ExportWorker) Export(ctx context.Context, req *amqp.ExportRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	now := w.now()
	data := export.Build(w.source.All(), req.Filters, now)
	path := filepath.Join(w.dir, JobFilename(req, now))

	tmp, err := os.CreateTemp(w.dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := export.Write(req.Format, data, tmp); err != nil {
		tmp.Close()
		w.logger.LogError(ctx, "Export failed", err, log.ComponentWorker, log.OpExport,
			log.NewFields().WithExport(req.JobID, req.Format.String(), path))
		return "", fmt.Errorf("write %s export: %w", req.Format, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move export into place: %w", err)
	}

	w.logger.LogExportWritten(ctx, req.JobID, req.Format.String(), path, len(data.Records))
	return path, nil
}

// JobFilename is the dated export name with the first eight characters of
// the job ID appended, so same-day jobs do not overwrite each other.
func JobFilename(req *amqp.ExportRequest, t time.Time) string {
	name := export.Filename(req.Format, t)
	ext := filepath.Ext(name)
	short := req.JobID
	if len(short) > 8 {
		short = short[:8]
	}
	return name[:len(name)-len(ext)] + "-" + short + ext
}
