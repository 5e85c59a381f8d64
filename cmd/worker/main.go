package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"market-pulse/internal/app"
	"market-pulse/internal/config"
	hhttp "market-pulse/internal/handler/http"
	"market-pulse/internal/handler/http/respond"
	workerPkg "market-pulse/internal/infra/worker"
	"market-pulse/internal/observability/logging"
	envcfg "market-pulse/internal/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logger := initLogger()
	if err := run(logger); err != nil {
		logger.Error("worker stopped with error", slog.Any("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
}

// initLogger initializes the JSON logger (LOG_LEVEL) and makes it the default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		return fmt.Errorf("worker configuration: %w", err)
	}
	loc, err := workerConfig.Location()
	if err != nil {
		return fmt.Errorf("worker timezone: %w", err)
	}
	logger.Info("worker configuration loaded",
		slog.String("analysis_schedule", workerConfig.AnalysisSchedule()),
		slog.String("daily_report_time", workerConfig.DailyReportTime),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("cycle_timeout", workerConfig.CycleTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	// Credentials fail closed, tuning values fall back to defaults.
	appConfig, err := config.LoadAppConfig(logger, envcfg.NewConfigMetrics("app"))
	if err != nil {
		return fmt.Errorf("application configuration: %w", err)
	}

	application, err := app.Build(ctx, appConfig, loc)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("failed to close connections", slog.Any("error", err))
		}
	}()

	if workerConfig.StartupSelfTest {
		if _, err := application.Pipeline.SelfTest(ctx); err != nil {
			return err
		}
	}

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	router := hhttp.NewRouter(hhttp.RouterDeps{
		DB:       application.DB,
		Vectors:  application.Vectors,
		Channels: application.Notify,
		Reports:  application.Reports,
		Version:  version,
		Logger:   logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.Start(gctx) })
	g.Go(func() error {
		return serveAPI(gctx, fmt.Sprintf(":%d", workerConfig.MetricsPort), router, logger)
	})

	scheduler, err := workerPkg.NewScheduler(gctx, application.Pipeline, workerConfig, workerMetrics, logger)
	if err != nil {
		stop()
		_ = g.Wait()
		return err
	}
	scheduler.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("version", version))

	initialRun := make(chan struct{})
	go func() {
		defer close(initialRun)
		if workerConfig.RunOnStart {
			scheduler.RunAnalysis()
		}
	}()

	<-gctx.Done()
	healthServer.SetReady(false)
	logger.Info("shutting down worker")

	stopped := scheduler.Stop()
	deadline := time.After(workerConfig.CycleTimeout)
	for _, done := range []<-chan struct{}{stopped.Done(), initialRun} {
		select {
		case <-done:
		case <-deadline:
			logger.Warn("in-flight job did not finish before shutdown deadline")
			return g.Wait()
		}
	}
	return g.Wait()
}
