package jobs

import (
	"context"
	"dataweave/internal/backends"
	"dataweave/internal/services"
	"time"

	"github.com/sirupsen/logrus"
)

// BackendHealthChecker probes every registered executor and publishes its
// availability to the backend_up gauge. Query routing reads availability
// live; the gauge exists so dashboards see flapping backends between
// requests.
type BackendHealthChecker struct {
	registry *backends.Registry
	metrics  *services.Metrics
	interval time.Duration
	lastRun  time.Time
}

// NewBackendHealthChecker creates the health check job.
func NewBackendHealthChecker(registry *backends.Registry, metrics *services.Metrics, interval time.Duration) *BackendHealthChecker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &BackendHealthChecker{
		registry: registry,
		metrics:  metrics,
		interval: interval,
	}
}

// Run checks availability of each backend once.
func (b *BackendHealthChecker) Run(ctx context.Context) error {
	b.lastRun = time.Now()

	status := b.registry.Status()
	up := 0
	for backend, available := range status {
		if b.metrics != nil {
			value := 0.0
			if available {
				value = 1.0
			}
			b.metrics.BackendUp.WithLabelValues(backend).Set(value)
		}
		if available {
			up++
		} else {
			logrus.WithField("backend", backend).Warn("Backend health check failed")
		}
	}

	logrus.WithFields(logrus.Fields{
		"up":    up,
		"total": len(status),
	}).Debug("Backend health check complete")
	return nil
}

// GetNextRunTime returns when the next health check should run.
func (b *BackendHealthChecker) GetNextRunTime() time.Time {
	if b.lastRun.IsZero() {
		// First probe shortly after startup so the gauge is populated
		// before the first scrape.
		return time.Now().Add(5 * time.Second)
	}
	return b.lastRun.Add(b.interval)
}
