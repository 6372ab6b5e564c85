package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup repopulates the dashboard cache.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskDashboardBump invalidates every cached dashboard entry.
	TaskDashboardBump = "dashboard:bump"

	periodLayout = "2006-01"
	maxMonths    = 12
)

// DashboardWarmupPayload selects which months the warmup covers.
type DashboardWarmupPayload struct {
	// Period is the newest month to warm, YYYY-MM. Empty means the current month.
	Period string `json:"period,omitempty"`
	// Months counts back from Period, inclusive. Zero means one.
	Months int `json:"months,omitempty"`
}

// Validate checks the payload before it is queued or handled.
func (p DashboardWarmupPayload) Validate() error {
	if p.Period != "" {
		if _, err := time.Parse(periodLayout, p.Period); err != nil {
			return fmt.Errorf("dashboard warmup: period %q: %w", p.Period, err)
		}
	}
	if p.Months < 0 || p.Months > maxMonths {
		return fmt.Errorf("dashboard warmup: months must be within 0..%d, got %d", maxMonths, p.Months)
	}
	return nil
}

// NewDashboardWarmupTask builds a warmup task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)), nil
}

// DashboardBumpPayload records why the cache was invalidated.
type DashboardBumpPayload struct {
	Reason string `json:"reason"`
}

// NewDashboardBumpTask builds a cache invalidation task.
func NewDashboardBumpTask(reason string) (*asynq.Task, error) {
	body, err := json.Marshal(DashboardBumpPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardBump, body, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}
