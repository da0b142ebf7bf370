package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"inventory/internal/amqp"
	"inventory/internal/cli"
	"inventory/internal/log"
	"inventory/internal/services"
	gsheet "inventory/internal/sheets/google"
	"inventory/internal/telemetry"
	"inventory/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	logger.Info("Starting inventory-worker")

	shutdownTracing, err := telemetry.Init(telemetry.Config{
		ServiceName: "inventory-worker",
		Environment: os.Getenv("APP_ENV"),
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		logger.Error("Failed to initialize tracing", log.FieldError, err)
		os.Exit(1)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	be := cli.InitBackend(startupCtx, logger, cfg)
	defer be.Close()

	// Purging the shared cache makes new records visible to the API at once.
	queryCache, stopCache := cli.InitExpenseCache(startupCtx, logger, cfg)
	defer stopCache()
	invalidator := services.NewExpenseQueryService(be.Backend, queryCache, nil, logger)
	ingest := services.NewIngestService(be.Backend, invalidator, nil, logger)

	// Google Sheets import is optional
	var sheets worker.SheetSource
	if cfg.GoogleSpreadsheetID != "" {
		importer, err := gsheet.NewImporter(startupCtx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetRange, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets importer", log.FieldError, err)
			os.Exit(1)
		}
		sheets = importer
		logger.Info("Google Sheets import enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"interval", cfg.ImportInterval.String())
	} else {
		logger.Info("Google Sheets import disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP consumption disabled - no AMQP_URL provided")
	}

	if amqpClient == nil && sheets == nil {
		logger.Error("Nothing to do: set AMQP_URL or GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}

	w := worker.NewIngestWorker(ingest, sheets, cfg.ImportInterval, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("Tracer shutdown error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeExpenseRecorded(gctx, w.HandleExpenseRecorded)
		})
	}
	if sheets != nil {
		g.Go(func() error {
			return w.RunImports(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("inventory-worker stopped")
}
