package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"salesdash/internal/amqp"
	"salesdash/internal/cli"
	"salesdash/internal/config"
	"salesdash/internal/core"
	"salesdash/internal/export"
	"salesdash/internal/log"
	"salesdash/internal/services"
	"salesdash/internal/worker"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		log.New(log.DefaultConfig()).Warn("Ignoring env file", log.FieldError, err)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker, os.Stdout)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	logger.Info("Starting export-worker", "export_dir", cfg.ExportDir)
	if err := run(cfg, logger); err != nil {
		logger.Error("Worker exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	store, err := cli.LoadStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	exportWorker := worker.NewExportWorker(store, cfg.ExportDir, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeExportRequests(gctx, exportWorker.HandleExportRequest)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if cfg.ExportSchedule != "" {
		format, err := export.ParseFormat(cfg.ExportScheduleFormat)
		if err != nil {
			return err
		}
		scheduler, err := services.NewExportScheduler(client, services.ExportSchedulerConfig{
			Schedule: cfg.ExportSchedule,
			Format:   format,
			Filters:  core.DefaultFilterSpec(),
		}, logger)
		if err != nil {
			return err
		}
		if err := scheduler.Start(gctx); err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer stopCancel()
			return scheduler.Stop(stopCtx)
		})
	}

	return g.Wait()
}
