package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitrine-admin/vitrine/internal/app"
	"github.com/vitrine-admin/vitrine/internal/dashboard"
	jobmetrics "github.com/vitrine-admin/vitrine/internal/jobs"
	"github.com/vitrine-admin/vitrine/internal/platform/cache"
	"github.com/vitrine-admin/vitrine/internal/platform/db"
	"github.com/vitrine-admin/vitrine/internal/storefront"
	"github.com/vitrine-admin/vitrine/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	var source storefront.Source
	if cfg.UsesPostgres() {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		source = storefront.NewRepository(pool)
	} else {
		fixtures, err := loadFixtures(cfg)
		if err != nil {
			return err
		}
		source = fixtures
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	dashCache := dashboard.NewCache(redisClient, cfg.CacheTTL)
	service := dashboard.NewService(source, dashCache)
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)

	worker, err := newWorker(cfg, logger, service, dashCache, metrics)
	if err != nil {
		return fmt.Errorf("init worker: %w", err)
	}

	metricsServer := newMetricsServer(cfg.WorkerMetricsAddr, registry)
	go func() {
		logger.Info("starting worker metrics listener", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker metrics listener", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("worker metrics shutdown", slog.Any("error", err))
		}
	}()

	logger.Info("starting worker", slog.String("warmup_schedule", cfg.WarmupSchedule), slog.String("data_source", cfg.DataSource))
	return worker.Run(ctx)
}

// newMetricsServer exposes the job collectors for scraping.
func newMetricsServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func newWorker(cfg *app.Config, logger *slog.Logger, service *dashboard.Service, bumper jobs.CacheBumper, metrics *jobmetrics.Metrics) (*jobs.Worker, error) {
	warmupJob := jobs.NewDashboardWarmupJob(service, logger, metrics)
	bumpJob := jobs.NewDashboardBumpJob(bumper, logger, metrics)

	warmupTask, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{Period: cfg.DashboardPeriod})
	if err != nil {
		return nil, fmt.Errorf("build warmup task: %w", err)
	}

	return jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskDashboardBump, Handler: bumpJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupSchedule, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
}

func loadFixtures(cfg *app.Config) (*storefront.FixtureSource, error) {
	if cfg.FixturesPath == "" {
		return storefront.DefaultFixtures()
	}
	return storefront.LoadFixtures(cfg.FixturesPath)
}
