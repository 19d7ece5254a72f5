package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"salesdash/internal/amqp"
	"salesdash/internal/config"
	"salesdash/internal/core"
	"salesdash/internal/export"
	"salesdash/internal/log"
)

// Publisher queues export jobs.
type Publisher interface {
	PublishExportRequest(ctx context.Context, req *amqp.ExportRequest) error
}

// ExportSchedulerConfig describes the recurring export.
type ExportSchedulerConfig struct {
	// Schedule is a cron expression with an optional seconds field, or a
	// descriptor such as "@daily".
	Schedule string
	Format   export.Format
	Filters  core.FilterSpec
}

var ErrNoSchedule = errors.New("export schedule is empty")

// ExportScheduler publishes an ExportRequest on every tick of its schedule.
type ExportScheduler struct {
	publisher Publisher
	config    ExportSchedulerConfig
	schedule  cron.Schedule
	logger    *log.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	ctx     context.Context
}

func NewExportScheduler(publisher Publisher, cfg ExportSchedulerConfig, logger *log.Logger) (*ExportScheduler, error) {
	if cfg.Schedule == "" {
		return nil, ErrNoSchedule
	}
	sched, err := config.ScheduleParser.Parse(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("parse export schedule %q: %w", cfg.Schedule, err)
	}
	if _, err := export.New(cfg.Format); err != nil {
		return nil, err
	}
	if err := cfg.Filters.Validate(); err != nil {
		return nil, fmt.Errorf("scheduled export filters: %w", err)
	}
	return &ExportScheduler{
		publisher: publisher,
		config:    cfg,
		schedule:  sched,
		logger:    logger.WithComponent(log.ComponentScheduler),
	}, nil
}

// Start registers the job and starts the cron loop. Returns an error if
// already running.
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("export scheduler is already running")
	}

	s.ctx = ctx
	s.cron = cron.New(cron.WithParser(config.ScheduleParser))
	s.cron.Schedule(s.schedule, cron.FuncJob(s.tick))
	s.cron.Start()
	s.running = true

	s.logger.InfoContext(ctx, "Export scheduler started",
		"schedule", s.config.Schedule,
		log.FieldExportFormat, s.config.Format,
		"next_run", s.Next(time.Now()))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *ExportScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	done := s.cron.Stop()
	s.running = false
	s.mu.Unlock()

	select {
	case <-done.Done():
		s.logger.InfoContext(ctx, "Export scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Export scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *ExportScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Next reports the next fire time after t.
func (s *ExportScheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

func (s *ExportScheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Scheduled export failed", log.FieldError, err)
	}
}

// RunOnce publishes a single export request now.
func (s *ExportScheduler) RunOnce(ctx context.Context) (*amqp.ExportRequest, error) {
	req := amqp.NewExportRequest(s.config.Format, s.config.Filters, "scheduler")
	if err := s.publisher.PublishExportRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("publish scheduled export: %w", err)
	}
	s.logger.InfoContext(ctx, "Scheduled export queued",
		log.FieldJobID, req.JobID,
		log.FieldExportFormat, req.Format)
	return req, nil
}
