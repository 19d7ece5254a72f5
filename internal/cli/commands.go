package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"salesdash/internal/amqp"
	"salesdash/internal/analytics"
	"salesdash/internal/config"
	"salesdash/internal/core"
	"salesdash/internal/export"
	"salesdash/internal/log"
	"salesdash/internal/records"
	"salesdash/internal/records/memory"
	"salesdash/internal/report"
)

var (
	// ErrNotWritable is returned by seed when the backend cannot store records.
	ErrNotWritable = errors.New("backend is read-only")
	// ErrAlreadySeeded is returned by seed when records exist and --force is unset.
	ErrAlreadySeeded = errors.New("backend already holds records")
	// ErrQueueDisabled is returned by enqueue when AMQP_URL is unset.
	ErrQueueDisabled = errors.New("export queue not configured: set AMQP_URL")
)

// setup loads the configuration and builds a logger for one command run.
func (e *environment) setup(component string) (*config.Config, *log.Logger, error) {
	cfg, err := e.loadConfig(e.globals)
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelWarn
	if e.globals.Verbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: component,
		Output:    e.logOut,
	})
	return cfg, logger, nil
}

func (e *environment) loadStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*records.Store, error) {
	res, err := e.openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	return records.Load(ctx, res.Loader)
}

// Execute implements the go-flags Commander interface for SeedCommand.
func (c *SeedCommand) Execute(args []string) error {
	ctx := context.Background()
	cfg, logger, err := c.env.setup(log.ComponentCLI)
	if err != nil {
		return err
	}

	res, err := c.env.openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer res.Close()
	if res.Writer == nil {
		return fmt.Errorf("%w: %s", ErrNotWritable, cfg.DataBackend)
	}

	if !c.Force {
		existing, err := res.Loader.Load(ctx)
		if err != nil {
			return fmt.Errorf("read existing records: %w", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w (%d records); pass --force to replace them", ErrAlreadySeeded, len(existing))
		}
	}

	var recs []core.SalesRecord
	source := "generator"
	if c.From != "" {
		f, err := os.Open(c.From)
		if err != nil {
			return fmt.Errorf("open %s: %w", c.From, err)
		}
		defer f.Close()
		if recs, err = memory.ReadCSV(f); err != nil {
			return fmt.Errorf("read %s: %w", c.From, err)
		}
		source = c.From
	} else {
		seed := c.Seed
		if seed == 0 {
			seed = cfg.MockSeed
		}
		recs = memory.Generate(seed)
	}

	if err := res.Writer.ReplaceAll(ctx, recs); err != nil {
		log.NewStructuredLogger(logger).LogError(ctx, "Seeding failed", err, log.ComponentCLI, log.OpSeed, nil)
		return fmt.Errorf("write records: %w", err)
	}

	fmt.Fprintf(c.env.out, "Seeded %s records into %s from %s\n",
		humanize.Comma(int64(len(recs))), cfg.DataBackend, source)
	return nil
}

// Execute implements the go-flags Commander interface for SummaryCommand.
func (c *SummaryCommand) Execute(args []string) error {
	spec, err := c.Filter.Spec()
	if err != nil {
		return err
	}
	ctx := context.Background()
	cfg, logger, err := c.env.setup(log.ComponentCLI)
	if err != nil {
		return err
	}
	store, err := c.env.loadStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	view := analytics.BuildDashboard(store.All(), spec)
	if c.JSON {
		enc := json.NewEncoder(c.env.out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return writeSummary(c.env.out, view)
}

func writeSummary(out io.Writer, view analytics.Dashboard) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Records\t%s of %s\n",
		humanize.Comma(int64(view.FilteredCount)), humanize.Comma(int64(view.RecordCount)))
	fmt.Fprintf(tw, "Active filters\t%d\n", view.ActiveFilters)
	for _, kpi := range report.KPIs(view.Metrics) {
		fmt.Fprintf(tw, "%s\t%s\n", kpi.Label, kpi.Value)
	}
	if shares := report.Shares(view.Categories); len(shares) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Category\tRevenue\tShare")
		for _, s := range shares {
			fmt.Fprintf(tw, "%s\t%s\t%s%%\n", s.Name, report.FormatCompact(s.Revenue), s.Percent.StringFixed(1))
		}
	}
	return tw.Flush()
}

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	spec, err := c.Filter.Spec()
	if err != nil {
		return err
	}
	ctx := context.Background()
	cfg, logger, err := c.env.setup(log.ComponentExport)
	if err != nil {
		return err
	}
	store, err := c.env.loadStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	now := c.env.now()
	data := export.Build(store.All(), spec, now)

	if c.Output == "-" {
		return export.Write(format, data, c.env.out)
	}

	path := c.Output
	if path == "" {
		path = export.Filename(format, now)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(format, data, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	log.NewStructuredLogger(logger).LogExportWritten(ctx, "", format.String(), path, len(data.Records))
	fmt.Fprintf(c.env.out, "Wrote %s rows to %s\n", humanize.Comma(int64(len(data.Records))), path)
	return nil
}

// Execute implements the go-flags Commander interface for EnqueueCommand.
func (c *EnqueueCommand) Execute(args []string) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	spec, err := c.Filter.Spec()
	if err != nil {
		return err
	}
	cfg, _, err := c.env.setup(log.ComponentAMQP)
	if err != nil {
		return err
	}
	if !cfg.AMQPEnabled() {
		return ErrQueueDisabled
	}

	pub, err := c.env.newPublisher(cfg)
	if err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	defer pub.Close()

	req := amqp.NewExportRequest(format, spec, "salesctl")
	if err := pub.PublishExportRequest(context.Background(), req); err != nil {
		return fmt.Errorf("publish export request: %w", err)
	}
	fmt.Fprintf(c.env.out, "Queued %s export %s\n", format, req.JobID)
	return nil
}
