package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"inventory/internal/cli"
	apphttp "inventory/internal/http"
	"inventory/internal/log"
	"inventory/internal/metrics"
	"inventory/internal/services"
	"inventory/internal/telemetry"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	shutdownTracing, err := telemetry.Init(telemetry.Config{
		ServiceName: "inventory-api",
		Environment: os.Getenv("APP_ENV"),
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		logger.Error("Failed to initialize tracing", log.FieldError, err)
		os.Exit(1)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	be := cli.InitBackend(startupCtx, logger, cfg)
	queryCache, stopCache := cli.InitExpenseCache(startupCtx, logger, cfg)
	cancelStartup()

	m := metrics.New()
	srv := apphttp.NewServer(cfg.Addr(), apphttp.Deps{
		Expenses:           services.NewExpenseQueryService(be.Backend, queryCache, m, logger),
		Dashboard:          services.NewDashboardService(be.Backend),
		Products:           services.NewProductService(be.Backend),
		Users:              be.Backend,
		Pinger:             be.Backend,
		Metrics:            m,
		Logger:             logger,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		stopCache()
		if err := be.Close(); err != nil {
			logger.Error("Backend close error", log.FieldError, err)
		}
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("Tracer shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting inventory server", "addr", cfg.Addr(), log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "addr", cfg.Addr())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
