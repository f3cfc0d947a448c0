package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the dashboard
type Metrics struct {
	// Per-endpoint query latency (the store round-trip, not the full request)
	QueryDuration *prometheus.HistogramVec

	// Cleanup mutation counters
	CleanupRuns         prometheus.Counter
	CleanupAgentsPruned prometheus.Counter
	CleanupFailures     prometheus.Counter

	// Fleet gauges, refreshed by the background stats job
	TotalAgents      prometheus.Gauge
	ActiveAgents     prometheus.Gauge
	BehindSchedule   prometheus.Gauge
	ProcessingVideos prometheus.Gauge
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		QueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creashort_dashboard_query_duration_seconds",
			Help:    "Document-store query latency per dashboard endpoint",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"endpoint"}),

		CleanupRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creashort_cleanup_runs_total",
			Help: "Total number of failed-history cleanup invocations",
		}),
		CleanupAgentsPruned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creashort_cleanup_agents_modified_total",
			Help: "Total number of agent records modified by cleanup runs",
		}),
		CleanupFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creashort_cleanup_failures_total",
			Help: "Total number of cleanup runs that failed",
		}),

		TotalAgents: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "creashort_agents_total",
			Help: "Total number of agent records",
		}),
		ActiveAgents: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "creashort_agents_active",
			Help: "Number of agents with an active schedule",
		}),
		BehindSchedule: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "creashort_agents_behind_schedule",
			Help: "Number of active agents past the grace period",
		}),
		ProcessingVideos: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "creashort_videos_processing",
			Help: "Number of generation attempts currently processing",
		}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// ObserveQuery records store latency for one endpoint
func (m *Metrics) ObserveQuery(endpoint string, seconds float64) {
	m.QueryDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordCleanup records a completed cleanup run
func (m *Metrics) RecordCleanup(modified int64) {
	m.CleanupRuns.Inc()
	m.CleanupAgentsPruned.Add(float64(modified))
}

// RecordCleanupFailure records a failed cleanup run
func (m *Metrics) RecordCleanupFailure() {
	m.CleanupRuns.Inc()
	m.CleanupFailures.Inc()
}
