package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"workboard/internal/amqp"
	"workboard/internal/backend"
	"workboard/internal/cache"
	"workboard/internal/cli"
	"workboard/internal/config"
	"workboard/internal/dashboard"
	apphttp "workboard/internal/http"
	applog "workboard/internal/log"
	"workboard/internal/services"
	"workboard/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	bootLogger := cli.SetupLogger("info", applog.ComponentApp)
	cli.LoadEnvFile(bootLogger)

	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	views := cache.NewLRUCache[dashboard.Summary](cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(views)
	caches.StartCleanup(ctx, time.Minute)
	defer caches.Stop()

	var publisher services.EventPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		publisher = client
		logger.Info("Publishing entry events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	svc := services.NewEntryService(store.New(), views, publisher, logger)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to close entry service", "error", err)
		}
	}()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Failed to close backend", "error", err, "backend", res.Type)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		ExportFilename: cfg.ExportFilename,
		Logger:         logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Seed failures leave the dashboard loading; the page stays reachable.
		if err := svc.Seed(gctx, res.Source, cfg.SeedDelay); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Failed to load initial entries", "error", err, "backend", res.Type)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting workboard server", "port", cfg.Port, "backend", res.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return cli.RunWithTimeout(logger, shutdownTimeout, srv.Shutdown)
	})

	return g.Wait()
}
