package cli

import (
	"context"
	"io"
	"time"

	"salesdash/internal/amqp"
	"salesdash/internal/backend"
	"salesdash/internal/config"
	"salesdash/internal/core"
	"salesdash/internal/log"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	EnvFile string `long:"env-file" description:"Load environment from this file instead of .env"`
	Verbose bool   `long:"verbose" description:"Log at debug level"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// FilterFlags selects records the same way the dashboard filters do.
type FilterFlags struct {
	Years      []int    `long:"year" description:"Restrict to a year (repeatable)"`
	AllYears   bool     `long:"all-years" description:"Do not restrict years"`
	Categories []string `long:"category" description:"Restrict to a category (repeatable)"`
	Regions    []string `long:"region" description:"Restrict to a region (repeatable)"`
	Products   []string `long:"product" description:"Restrict to a product (repeatable)"`
	Threshold  float64  `long:"threshold" description:"Minimum revenue per record; 0 disables" default:"0"`
}

// Spec converts the flags into a validated filter spec. Without --year or
// --all-years the default years apply.
func (f FilterFlags) Spec() (core.FilterSpec, error) {
	years := core.DefaultYears()
	switch {
	case f.AllYears:
		years = []int{}
	case len(f.Years) > 0:
		years = f.Years
	}
	return core.NewFilterSpec(years, f.Categories, f.Regions, f.Products, f.Threshold, core.ChartBar)
}

// SeedCommand writes generated or CSV records into a writable backend.
type SeedCommand struct {
	From  string `long:"from" description:"CSV file to import instead of generated data"`
	Seed  uint64 `long:"seed" description:"Generator seed; defaults to MOCK_SEED"`
	Force bool   `long:"force" description:"Replace existing records"`

	env *environment
}

// SummaryCommand prints the headline KPIs for a filter.
type SummaryCommand struct {
	Filter FilterFlags `group:"Filter Options"`
	JSON   bool        `long:"json" description:"Print the full dashboard as JSON"`

	env *environment
}

// ExportCommand writes the filtered records to a file.
type ExportCommand struct {
	Format string      `long:"format" description:"csv | xlsx | pdf" default:"csv"`
	Output string      `long:"output" short:"o" description:"Output path; - for stdout; defaults to the dated file name"`
	Filter FilterFlags `group:"Filter Options"`

	env *environment
}

// EnqueueCommand queues an export job for the export worker.
type EnqueueCommand struct {
	Format string      `long:"format" description:"csv | xlsx | pdf" default:"csv"`
	Filter FilterFlags `group:"Filter Options"`

	env *environment
}

type exportPublisher interface {
	PublishExportRequest(ctx context.Context, req *amqp.ExportRequest) error
	Close() error
}

// environment carries what commands need from the process. Tests replace
// the constructors.
type environment struct {
	globals *GlobalFlags
	version string
	out     io.Writer
	logOut  io.Writer
	now     func() time.Time

	loadConfig   func(g *GlobalFlags) (*config.Config, error)
	openBackend  func(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.BackendResult, error)
	newPublisher func(cfg *config.Config) (exportPublisher, error)
}

func defaultEnvironment(globals *GlobalFlags, version string, out io.Writer) *environment {
	return &environment{
		globals: globals,
		version: version,
		out:     out,
		logOut:  io.Discard,
		now:     time.Now,
		loadConfig: func(g *GlobalFlags) (*config.Config, error) {
			if g.EnvFile != "" {
				if err := LoadEnvFile(g.EnvFile); err != nil {
					return nil, err
				}
			} else if err := LoadEnvFile(); err != nil {
				return nil, err
			}
			return LoadAndValidateConfig()
		},
		openBackend: InitBackend,
		newPublisher: func(cfg *config.Config) (exportPublisher, error) {
			return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		},
	}
}
