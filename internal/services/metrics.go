package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Pipeline metrics
	Requests        *prometheus.CounterVec
	RequestLatency  prometheus.Histogram
	Clarifications  *prometheus.CounterVec

	// Backend task metrics
	TaskDuration *prometheus.HistogramVec
	TaskFailures *prometheus.CounterVec
	BackendUp    *prometheus.GaugeVec

	// Language service metrics
	LanguageFallbacks *prometheus.CounterVec
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// InitMetrics initializes the Prometheus metrics. Registered at most once;
// repeat calls return the same instance.
func InitMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			Requests: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "dataweave_requests_total",
				Help: "Total pipeline requests by classified domain",
			}, []string{"domain"}),

			RequestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "dataweave_request_duration_seconds",
				Help:    "End-to-end pipeline latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			}),

			Clarifications: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "dataweave_clarifications_total",
				Help: "Clarification responses by query type",
			}, []string{"query_type"}),

			TaskDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "dataweave_task_duration_seconds",
				Help:    "Backend task latency in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			}, []string{"backend"}),

			TaskFailures: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "dataweave_task_failures_total",
				Help: "Failed backend tasks by backend and reason",
			}, []string{"backend", "reason"}),

			BackendUp: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "dataweave_backend_up",
				Help: "Backend executor availability (1 = available)",
			}, []string{"backend"}),

			LanguageFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "dataweave_language_fallbacks_total",
				Help: "Deterministic fallbacks taken after language service failures",
			}, []string{"operation"}),
		}
	})
	return metricsInstance
}
