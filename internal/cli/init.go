// Package cli provides common CLI initialization utilities shared by the
// server, the ingestion worker and the command line tools.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"inventory/internal/backend"
	"inventory/internal/cache"
	"inventory/internal/config"
	"inventory/internal/core"
	"inventory/internal/log"
)

// SetupLogger builds the process logger from cfg and installs it as the slog
// default. A nil cfg gives info-level text output.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	lc := log.DefaultConfig()
	lc.Component = component
	if cfg != nil {
		lc.Level = log.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on failure.
func LoadAndValidateConfig() *config.Config {
	logger := SetupLogger(nil, log.ComponentApp)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", log.FieldError, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend opens the configured data backend.
// Returns the backend or exits the process on failure.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, bc.Type.String())
		os.Exit(1)
	}
	return res
}

// InitExpenseCache returns the query cache: Redis when REDIS_ADDR is set,
// otherwise an in-process LRU cleaned by a Manager. The returned stop
// function releases whichever was created. A zero TTL disables caching and
// returns a nil cache.
func InitExpenseCache(ctx context.Context, logger *log.Logger, cfg *config.Config) (cache.Cache[[]core.ExpenseByCategory], func()) {
	if cfg.CacheTTL == 0 {
		logger.Info("Query cache disabled")
		return nil, func() {}
	}

	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err == nil {
			logger.Info("Using Redis query cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL.String())
			return cache.NewRedisCache[[]core.ExpenseByCategory](client, "inventory:expenses", cfg.CacheTTL, logger),
				func() { client.Close() }
		}
		logger.Warn("Redis unavailable, falling back to in-process cache", log.FieldError, err, "addr", cfg.RedisAddr)
	}

	lru := cache.NewLRUCache[[]core.ExpenseByCategory](256, cfg.CacheTTL)
	manager := cache.NewManager(logger)
	manager.Register(lru)
	manager.StartCleanup(cfg.CacheTTL)
	logger.Info("Using in-process query cache", "ttl", cfg.CacheTTL.String())
	return lru, manager.Stop
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-finished:
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
