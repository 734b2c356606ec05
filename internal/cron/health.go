package cron

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/flemzord/warelay/internal/metrics"
)

const defaultProbeTimeout = 5 * time.Second

// HealthProbeJob checks each backend on a schedule, exports the result
// as warelay_backend_up and logs only when a backend changes state.
type HealthProbeJob struct {
	Probes       map[string]func(ctx context.Context) error
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	ScheduleExpr string
	Timeout      time.Duration

	mu   sync.Mutex
	last map[string]bool
}

// Compile-time interface check.
var _ Job = (*HealthProbeJob)(nil)

// Name implements Job.
func (j *HealthProbeJob) Name() string { return "health_probe" }

// Schedule implements Job.
func (j *HealthProbeJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run probes every backend. Failing backends are reported through logs
// and metrics; the returned error is reserved for cancellation.
func (j *HealthProbeJob) Run(ctx context.Context) error {
	names := make([]string, 0, len(j.Probes))
	for name := range j.Probes {
		names = append(names, name)
	}
	sort.Strings(names)

	timeout := j.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		pctx, cancel := context.WithTimeout(ctx, timeout)
		err := j.Probes[name](pctx)
		cancel()
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return ctx.Err()
		}
		j.record(name, err)
	}
	return nil
}

// Up reports the last observed state of backend.
func (j *HealthProbeJob) Up(backend string) (up, known bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	up, known = j.last[backend]
	return up, known
}

func (j *HealthProbeJob) record(name string, err error) {
	up := err == nil
	j.Metrics.SetBackendUp(name, up)

	j.mu.Lock()
	if j.last == nil {
		j.last = make(map[string]bool)
	}
	prev, seen := j.last[name]
	j.last[name] = up
	j.mu.Unlock()

	if seen && prev == up {
		return
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if up {
		logger.Info("backend healthy", "backend", name)
	} else {
		logger.Warn("backend unhealthy", "backend", name, "error", err)
	}
}
