package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/jobs"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/platform/config"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/repositories/database/pgsql"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(cfg, repos)

	worker, err := jobs.NewWorker(cfg, jobs.TaskDeps{
		Reconciliation: container.Reconciliation,
		Revenue:        container.Revenue,
		Collection:     container.Collection,
		SystemUserID:   cfg.SystemUserID,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("Failed to build worker", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Worker starting",
		slog.String("redis_addr", cfg.RedisAddr),
		slog.String("reconcile_schedule", cfg.ReconcileSchedule),
		slog.String("backfill_schedule", cfg.BackfillSchedule),
		slog.String("aging_schedule", cfg.AgingSchedule))

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Worker exited.")
}
