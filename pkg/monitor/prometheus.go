package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromMetrics bundles the Prometheus instruments the monitor keeps
// updated. Construct with [NewPromMetrics] against the registry the
// process exposes and attach via [WithPromMetrics].
type PromMetrics struct {
	// ErrorsTotal counts recorded errors by category and severity.
	ErrorsTotal *prometheus.CounterVec

	// AlertsTotal counts fired alerts by alert type.
	AlertsTotal *prometheus.CounterVec

	// HealthScore is the current health score, 0 to 100.
	HealthScore prometheus.Gauge

	// EventsRetained is the number of events inside the retention
	// window.
	EventsRetained prometheus.Gauge

	// OperationDuration observes tracked operation durations in
	// seconds, by operation name and outcome.
	OperationDuration *prometheus.HistogramVec
}

// NewPromMetrics creates and registers the monitor's instruments on the
// given registerer. Registering twice on the same registry panics, per
// the usual Prometheus contract.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	factory := promauto.With(reg)
	return &PromMetrics{
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reliability_errors_total",
			Help: "Errors recorded by the monitor, by category and severity.",
		}, []string{"category", "severity"}),
		AlertsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reliability_alerts_total",
			Help: "Alerts fired by the monitor, by alert type.",
		}, []string{"type"}),
		HealthScore: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reliability_health_score",
			Help: "Current health score between 0 and 100.",
		}),
		EventsRetained: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reliability_events_retained",
			Help: "Error events currently inside the retention window.",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reliability_operation_duration_seconds",
			Help:    "Tracked operation durations in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}
}

// ObserveOperation records one operation duration. The signature matches
// the perf package's RecordHook so a performance tracker can feed the
// histogram directly.
func (p *PromMetrics) ObserveOperation(name string, duration time.Duration, failed bool) {
	status := "ok"
	if failed {
		status = "failed"
	}
	p.OperationDuration.WithLabelValues(name, status).Observe(duration.Seconds())
}
