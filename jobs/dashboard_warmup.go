package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vitrine-admin/vitrine/internal/dashboard"
	jobmetrics "github.com/vitrine-admin/vitrine/internal/jobs"
	"github.com/vitrine-admin/vitrine/internal/storefront"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// stepTimeout bounds each individual cache load.
const stepTimeout = 20 * time.Second

// DashboardWarmer is the slice of the dashboard service the warmup drives.
type DashboardWarmer interface {
	GetStats(ctx context.Context, filter dashboard.StatsFilter) ([]storefront.StatMetric, error)
	GetSales(ctx context.Context, filter dashboard.SalesFilter) ([]storefront.SalesPoint, error)
	GetRecentOrders(ctx context.Context, filter dashboard.OrderFilter) ([]storefront.Order, error)
	GetTopProducts(ctx context.Context, filter dashboard.ProductFilter) ([]storefront.Product, error)
}

// DashboardWarmupJob pre-populates the dashboard cache.
type DashboardWarmupJob struct {
	Dashboard DashboardWarmer
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(service DashboardWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboard: service,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the job clock.
func (j *DashboardWarmupJob) WithClock(fn func() time.Time) *DashboardWarmupJob {
	if fn != nil {
		j.clock = fn
	}
	return j
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := payload.Validate(); err != nil {
		j.logger().Warn("discard warmup task", slog.Any("error", err))
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	months := j.months(payload)
	logger := j.logger().With(slog.String("period", months[0].Format(periodLayout)), slog.Int("months", len(months)))
	logger.Info("starting dashboard warmup")
	start := j.now()

	warmed := map[string]int{}
	years := map[int]bool{}
	for _, month := range months {
		period := month.Format(periodLayout)
		if err := j.step(ctx, func(ctx context.Context) error {
			_, err := j.Dashboard.GetStats(ctx, dashboard.StatsFilter{Period: period})
			return err
		}); err != nil {
			resultErr = err
			logger.Error("warm stats", slog.String("month", period), slog.Any("error", err))
			return resultErr
		}
		warmed["stats"]++
		if years[month.Year()] {
			continue
		}
		years[month.Year()] = true
		if err := j.step(ctx, func(ctx context.Context) error {
			_, err := j.Dashboard.GetSales(ctx, dashboard.SalesFilter{Year: month.Year()})
			return err
		}); err != nil {
			resultErr = err
			logger.Error("warm sales", slog.Int("year", month.Year()), slog.Any("error", err))
			return resultErr
		}
		warmed["sales"]++
	}

	if err := j.step(ctx, func(ctx context.Context) error {
		_, err := j.Dashboard.GetRecentOrders(ctx, dashboard.OrderFilter{})
		return err
	}); err != nil {
		resultErr = err
		logger.Error("warm orders", slog.Any("error", err))
		return resultErr
	}
	warmed["orders"]++
	if err := j.step(ctx, func(ctx context.Context) error {
		_, err := j.Dashboard.GetTopProducts(ctx, dashboard.ProductFilter{})
		return err
	}); err != nil {
		resultErr = err
		logger.Error("warm products", slog.Any("error", err))
		return resultErr
	}
	warmed["products"]++

	for kind, count := range warmed {
		j.metrics().AddWarmed(kind, count)
	}
	logger.Info("completed dashboard warmup", slog.Int("years", len(years)), slog.Duration("duration", j.now().Sub(start)))
	return resultErr
}

// months lists the months to warm, newest first.
func (j *DashboardWarmupJob) months(payload DashboardWarmupPayload) []time.Time {
	newest := j.now()
	if payload.Period != "" {
		newest, _ = time.Parse(periodLayout, payload.Period)
	}
	newest = time.Date(newest.Year(), newest.Month(), 1, 0, 0, 0, 0, time.UTC)
	count := payload.Months
	if count <= 0 {
		count = 1
	}
	out := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, newest.AddDate(0, -i, 0))
	}
	return out
}

func (j *DashboardWarmupJob) step(ctx context.Context, fn func(context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()
	return fn(stepCtx)
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
