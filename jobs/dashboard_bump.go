package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/vitrine-admin/vitrine/internal/jobs"
)

// CacheBumper invalidates the dashboard cache.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// DashboardBumpJob handles cache invalidation tasks.
type DashboardBumpJob struct {
	Cache   CacheBumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDashboardBumpJob wires the bump handler.
func NewDashboardBumpJob(cache CacheBumper, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardBumpJob {
	return &DashboardBumpJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle bumps the cache version so every instance reloads.
func (j *DashboardBumpJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("dashboard bump: handler not configured")
	}
	var payload DashboardBumpPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskDashboardBump)

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", TaskDashboardBump), slog.String("reason", payload.Reason))

	if err := j.Cache.Bump(ctx); err != nil {
		logger.Error("bump dashboard cache", slog.Any("error", err))
		return tracker.End(err)
	}
	logger.Info("dashboard cache bumped")
	return tracker.End(nil)
}
