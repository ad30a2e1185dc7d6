package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"userapi/internal/config"
	"userapi/internal/database"
	"userapi/internal/database/migration"
	"userapi/internal/logging"
	"userapi/internal/otel"
	"userapi/internal/repository"
	"userapi/internal/repository/dynamo"
	"userapi/internal/repository/memory"
	"userapi/internal/repository/postgres"
	"userapi/internal/service"
	"userapi/internal/storage"
	"userapi/internal/validation"
)

// @title User API
// @version 1.0
// @description Users CRUD on a document store plus presigned avatar uploads.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.Location())
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("startup_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing_shutdown_failed", slog.String("error", err.Error()))
		}
	}()

	repo, closeRepo, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Initialize reusable S3-compatible presigning client
	objStore, err := storage.NewMinIO(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	val := validation.New()
	users := service.NewUserService(repo, val)
	uploads := service.NewUploadService(objStore, val, cfg.Upload)

	app, err := newServer(cfg, logger, users, uploads)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("server_starting",
			slog.String("addr", addr),
			slog.String("store_backend", cfg.Store.Backend),
			slog.String("bucket", cfg.Storage.Bucket),
		)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server_stopping", slog.Duration("timeout", cfg.ShutdownTimeout))
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server_stopped")
	return nil
}

// openStore builds the configured document store and returns its cleanup func.
func openStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (repository.UserRepository, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		dbCfg := cfg.Store.Database
		if dbCfg.AutoMigrate {
			if err := migration.Up(dbCfg, logger); err != nil {
				return nil, noop, fmt.Errorf("migrate database: %w", err)
			}
		}
		db, err := database.NewPostgres(ctx, dbCfg, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("connect database: %w", err)
		}
		return postgres.NewUserPostgres(db), func() { _ = db.Close() }, nil

	case config.BackendDynamoDB:
		client, err := dynamo.NewClient(ctx, cfg.Region, cfg.Store.DynamoDB)
		if err != nil {
			return nil, noop, fmt.Errorf("init dynamodb: %w", err)
		}
		logger.Info("dynamodb_configured",
			slog.String("component", "database"),
			slog.String("table", cfg.Store.DynamoDB.Table),
			slog.String("endpoint", cfg.Store.DynamoDB.Endpoint),
		)
		return dynamo.NewUserDynamoDB(client, cfg.Store.DynamoDB.Table), noop, nil

	case config.BackendMemory:
		logger.Warn("memory_store_enabled", slog.String("component", "database"))
		return memory.NewUserMemory(), noop, nil
	}

	return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
