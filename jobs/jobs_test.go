package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-admin/vitrine/internal/dashboard"
	jobmetrics "github.com/vitrine-admin/vitrine/internal/jobs"
	"github.com/vitrine-admin/vitrine/internal/storefront"
)

type recordingWarmer struct {
	mu       sync.Mutex
	stats    []string
	sales    []int
	orders   int
	products int
	failOn   string
}

func (r *recordingWarmer) GetStats(_ context.Context, filter dashboard.StatsFilter) ([]storefront.StatMetric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "stats" {
		return nil, errors.New("stats down")
	}
	r.stats = append(r.stats, filter.Period)
	return nil, nil
}

func (r *recordingWarmer) GetSales(_ context.Context, filter dashboard.SalesFilter) ([]storefront.SalesPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales = append(r.sales, filter.Year)
	return nil, nil
}

func (r *recordingWarmer) GetRecentOrders(context.Context, dashboard.OrderFilter) ([]storefront.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders++
	return nil, nil
}

func (r *recordingWarmer) GetTopProducts(context.Context, dashboard.ProductFilter) ([]storefront.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "products" {
		return nil, errors.New("products down")
	}
	r.products++
	return nil, nil
}

type countingBumper struct {
	calls int
	err   error
}

func (c *countingBumper) Bump(context.Context) error {
	c.calls++
	return c.err
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)
}

func warmupTask(t *testing.T, payload DashboardWarmupPayload) *asynq.Task {
	t.Helper()
	task, err := NewDashboardWarmupTask(payload)
	require.NoError(t, err)
	return task
}

func TestWarmupDefaultsToCurrentMonth(t *testing.T) {
	warmer := &recordingWarmer{}
	registry := prometheus.NewRegistry()
	job := NewDashboardWarmupJob(warmer, nil, jobmetrics.NewMetrics(registry)).WithClock(fixedClock)

	require.NoError(t, job.Handle(context.Background(), warmupTask(t, DashboardWarmupPayload{})))

	assert.Equal(t, []string{"2024-06"}, warmer.stats)
	assert.Equal(t, []int{2024}, warmer.sales)
	assert.Equal(t, 1, warmer.orders)
	assert.Equal(t, 1, warmer.products)

	count, err := testutil.GatherAndCount(registry, "vitrine_dashboard_warmed_entries_total")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestWarmupSpansYears(t *testing.T) {
	warmer := &recordingWarmer{}
	job := NewDashboardWarmupJob(warmer, nil, jobmetrics.NewMetrics(prometheus.NewRegistry())).WithClock(fixedClock)

	require.NoError(t, job.Handle(context.Background(), warmupTask(t, DashboardWarmupPayload{Period: "2024-02", Months: 3})))

	assert.Equal(t, []string{"2024-02", "2024-01", "2023-12"}, warmer.stats)
	assert.Equal(t, []int{2024, 2023}, warmer.sales)
	assert.Equal(t, 1, warmer.orders)
}

func TestWarmupStopsOnError(t *testing.T) {
	warmer := &recordingWarmer{failOn: "products"}
	registry := prometheus.NewRegistry()
	job := NewDashboardWarmupJob(warmer, nil, jobmetrics.NewMetrics(registry)).WithClock(fixedClock)

	err := job.Handle(context.Background(), warmupTask(t, DashboardWarmupPayload{}))
	require.EqualError(t, err, "products down")

	count, err := testutil.GatherAndCount(registry, "vitrine_dashboard_warmed_entries_total")
	require.NoError(t, err)
	assert.Zero(t, count)

	expected := `
# HELP vitrine_jobs_failures_total Total failures observed for background jobs.
# TYPE vitrine_jobs_failures_total counter
vitrine_jobs_failures_total{job="dashboard:warmup"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "vitrine_jobs_failures_total"))
}

func TestWarmupSkipsMalformedPayload(t *testing.T) {
	job := NewDashboardWarmupJob(&recordingWarmer{}, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, []byte(`{"period":"june"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWarmupRequiresService(t *testing.T) {
	var job *DashboardWarmupJob
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil)))
}

func TestNewDashboardWarmupTaskValidates(t *testing.T) {
	_, err := NewDashboardWarmupTask(DashboardWarmupPayload{Months: 13})
	require.Error(t, err)
	_, err = NewDashboardWarmupTask(DashboardWarmupPayload{Period: "2024/06"})
	require.Error(t, err)

	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{Period: "2024-06", Months: 2})
	require.NoError(t, err)
	assert.Equal(t, TaskDashboardWarmup, task.Type())
	assert.JSONEq(t, `{"period":"2024-06","months":2}`, string(task.Payload()))
}

func TestBumpJob(t *testing.T) {
	bumper := &countingBumper{}
	job := NewDashboardBumpJob(bumper, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewDashboardBumpTask("catalog import")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, bumper.calls)

	bumper.err = errors.New("redis down")
	require.EqualError(t, job.Handle(context.Background(), task), "redis down")

	assert.ErrorIs(t, job.Handle(context.Background(), asynq.NewTask(TaskDashboardBump, []byte("nope"))), asynq.SkipRetry)
}

func TestNewWorkerRejectsBadConfig(t *testing.T) {
	opts := asynq.RedisClientOpt{Addr: "127.0.0.1:0"}
	_, err := NewWorker(WorkerConfig{RedisOpts: opts})
	require.Error(t, err)

	bump := NewDashboardBumpJob(&countingBumper{}, nil, nil)
	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{})
	require.NoError(t, err)
	_, err = NewWorker(WorkerConfig{
		RedisOpts: opts,
		Handlers:  []TaskHandler{{Type: TaskDashboardBump, Handler: bump.Handle}},
		Cron:      []CronRegistration{{Spec: "every now and then", Task: task}},
	})
	require.Error(t, err)

	worker, err := NewWorker(WorkerConfig{
		RedisOpts: opts,
		Handlers:  []TaskHandler{{Type: TaskDashboardBump, Handler: bump.Handle}},
		Cron:      []CronRegistration{{Spec: "*/15 * * * *", Task: task}},
	})
	require.NoError(t, err)
	assert.NotNil(t, worker)
}

func TestClientEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	info, err := client.EnqueueBump(context.Background(), "test")
	require.NoError(t, err)
	assert.Equal(t, TaskDashboardBump, info.Type)
	assert.Equal(t, QueueDefault, info.Queue)

	_, err = client.EnqueueWarmup(context.Background(), DashboardWarmupPayload{Months: -1})
	require.Error(t, err)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

type stubEnqueuer struct {
	warmups []DashboardWarmupPayload
	reasons []string
	err     error
}

func (s *stubEnqueuer) EnqueueWarmup(_ context.Context, payload DashboardWarmupPayload) (*asynq.TaskInfo, error) {
	s.warmups = append(s.warmups, payload)
	return &asynq.TaskInfo{ID: "w-1", Type: TaskDashboardWarmup, Queue: QueueDefault}, s.err
}

func (s *stubEnqueuer) EnqueueBump(_ context.Context, reason string) (*asynq.TaskInfo, error) {
	s.reasons = append(s.reasons, reason)
	return &asynq.TaskInfo{ID: "b-1", Type: TaskDashboardBump, Queue: QueueDefault}, s.err
}

func newJobsRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	return r
}

func TestHealthEndpoint(t *testing.T) {
	router := newJobsRouter(NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3}}, nil))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":3}`, rr.Body.String())

	failing := newJobsRouter(NewHandler(stubInspector{err: errors.New("redis down")}, nil))
	rr = httptest.NewRecorder()
	failing.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestMaintenanceEndpoints(t *testing.T) {
	enqueuer := &stubEnqueuer{}
	router := newJobsRouter(NewHandler(nil, nil).WithEnqueuer(enqueuer))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/dashboard/warmup", strings.NewReader(`{"period":"2024-06","months":3}`)))
	require.Equal(t, http.StatusAccepted, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "w-1", body["id"])
	assert.Equal(t, []DashboardWarmupPayload{{Period: "2024-06", Months: 3}}, enqueuer.warmups)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/dashboard/warmup", strings.NewReader(`{"months":99}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/dashboard/bump", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, []string{"manual"}, enqueuer.reasons)

	enqueuer.err = errors.New("queue full")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/dashboard/bump?reason=import", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestMaintenanceEndpointsNeedEnqueuer(t *testing.T) {
	router := newJobsRouter(NewHandler(nil, nil))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/dashboard/bump", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
