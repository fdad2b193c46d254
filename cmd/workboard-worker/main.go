package main

import (
	"os"

	"golang.org/x/sync/errgroup"

	"workboard/internal/amqp"
	"workboard/internal/cli"
	"workboard/internal/config"
	applog "workboard/internal/log"
	"workboard/internal/storage"
	"workboard/internal/worker"
)

func main() {
	bootLogger := cli.SetupLogger("info", applog.ComponentWorker)
	cli.LoadEnvFile(bootLogger)

	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		bootLogger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)
	logger.Info("Starting workboard-worker")

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		return err
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		return err
	}
	defer client.Close()

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.NewMirrorWorker(repo, logger).Run(gctx, client)
	})
	return g.Wait()
}
