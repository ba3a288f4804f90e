package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	AnalysisRequests *prometheus.CounterVec
	TraceEvents      *prometheus.CounterVec
	CompletionErrors *prometheus.CounterVec
	ProcessingTime   prometheus.Histogram
	TracesPurged     prometheus.Counter
	FeedClients      prometheus.Gauge

	stages *stageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		AnalysisRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_requests_total",
			Help:      "Analysis requests by outcome.",
		}, []string{"outcome"}),
		TraceEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trace_events_total",
			Help:      "Trace events appended, by event type.",
		}, []string{"type"}),
		CompletionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_errors_total",
			Help:      "Completion provider errors by code.",
		}, []string{"code"}),
		ProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_processing_seconds",
			Help:      "End-to-end analysis processing time in seconds.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
		}),
		TracesPurged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traces_purged_total",
			Help:      "Trace files removed by age-based purge.",
		}),
		FeedClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_clients",
			Help:      "Connected live trace feed websocket clients.",
		}),
		stages: newStageWindow(256),
	}
}

// ObserveStage records one stage latency sample into the rolling window.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stages.Observe(stage, float64(d.Microseconds())/1000.0)
}

// IncrementIndicator bumps a named in-window quality indicator.
func (m *Metrics) IncrementIndicator(name string) {
	if m == nil {
		return
	}
	m.stages.ObserveIndicator(name)
}

// SnapshotStages returns the current rolling latency snapshot.
func (m *Metrics) SnapshotStages() StageSnapshot {
	if m == nil {
		return StageSnapshot{}
	}
	return m.stages.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
