package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-admin/vitrine/internal/app"
	"github.com/vitrine-admin/vitrine/internal/dashboard"
	"github.com/vitrine-admin/vitrine/internal/dashboard/export"
	dashboardhttp "github.com/vitrine-admin/vitrine/internal/dashboard/http"
	"github.com/vitrine-admin/vitrine/internal/dashboard/svg"
	"github.com/vitrine-admin/vitrine/internal/observability"
	"github.com/vitrine-admin/vitrine/internal/platform/cache"
	"github.com/vitrine-admin/vitrine/internal/platform/db"
	"github.com/vitrine-admin/vitrine/internal/storefront"
	"github.com/vitrine-admin/vitrine/internal/view"
	"github.com/vitrine-admin/vitrine/jobs"
	"github.com/vitrine-admin/vitrine/report"
)

type lineRenderer struct{}

func (lineRenderer) Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error) {
	return svg.Line(width, height, series, labels, opts)
}

type barRenderer struct{}

func (barRenderer) Bars(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error) {
	return svg.Bars(width, height, seriesA, seriesB, labels, opts)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	if err := run(ctx, stop, cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg *app.Config, logger *slog.Logger) error {
	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		var err error
		pool, err = db.New(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
	}
	source, err := buildSource(cfg, pool)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()

	var dashCache *dashboard.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, dashboard cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		dashCache = dashboard.NewCache(redisClient, cfg.CacheTTL).WithObserver(metrics)
		if err := dashCache.ListenForInvalidation(ctx, dashboard.BumpChannel); err != nil {
			logger.Warn("subscribe cache invalidation", slog.Any("error", err))
		}
	}
	service := dashboard.NewService(source, dashCache)

	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)
	pdfExporter := export.NewPDFExporter(reportClient)

	dashboardHandler := dashboardhttp.NewHandler(logger, service, templates, lineRenderer{}, barRenderer{}, pdfExporter, dashboardhttp.Options{
		DefaultPeriod: cfg.DashboardPeriod,
		OrderLimit:    cfg.RecentOrdersLimit,
		ProductLimit:  cfg.TopProductsLimit,
		AppEnv:        cfg.AppEnv,
	})

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger).WithEnqueuer(jobClient)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DashboardHandler: dashboardHandler,
		ReportHandler:    reportHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("data_source", cfg.DataSource))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// buildSource picks the dashboard data source named by the configuration.
func buildSource(cfg *app.Config, pool *pgxpool.Pool) (storefront.Source, error) {
	if cfg.UsesPostgres() {
		if pool == nil {
			return nil, errors.New("postgres source requires a pool")
		}
		return storefront.NewRepository(pool), nil
	}
	if cfg.FixturesPath != "" {
		fixtures, err := storefront.LoadFixtures(cfg.FixturesPath)
		if err != nil {
			return nil, fmt.Errorf("load fixtures: %w", err)
		}
		return fixtures, nil
	}
	fixtures, err := storefront.DefaultFixtures()
	if err != nil {
		return nil, fmt.Errorf("load embedded fixtures: %w", err)
	}
	return fixtures, nil
}
