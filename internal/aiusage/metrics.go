package aiusage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the usage limiter. a nil *Metrics is a no-op.
type Metrics struct {
	checks          *prometheus.CounterVec
	increments      *prometheus.CounterVec
	limitHits       *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	integrityErrors prometheus.Counter
	storeDuration   *prometheus.HistogramVec
}

// registers the limiter metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpal_ai_usage_checks_total",
				Help: "Total number of AI usage checks performed",
			},
			[]string{"feature", "result"},
		),

		increments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpal_ai_usage_increments_total",
				Help: "Total number of AI usage increments attempted",
			},
			[]string{"feature", "result"},
		),

		limitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpal_ai_usage_limit_hits_total",
				Help: "Total number of requests denied by the daily ceiling",
			},
			[]string{"feature"},
		),

		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpal_ai_usage_store_errors_total",
				Help: "Total number of usage store failures",
			},
			[]string{"operation"},
		),

		integrityErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "finpal_ai_usage_record_integrity_errors_total",
				Help: "Usage records whose total diverged from the per-feature sum",
			},
		),

		storeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finpal_ai_usage_store_duration_seconds",
				Help:    "Duration of usage store round trips in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
			},
			[]string{"operation"},
		),
	}
}

func (m *Metrics) recordCheck(feature FeatureType, allowed bool) {
	if m == nil {
		return
	}

	m.checks.WithLabelValues(string(feature), resultLabel(allowed, "allowed", "denied")).Inc()
	if !allowed {
		m.limitHits.WithLabelValues(string(feature)).Inc()
	}
}

func (m *Metrics) recordIncrement(feature FeatureType, success bool) {
	if m == nil {
		return
	}

	m.increments.WithLabelValues(string(feature), resultLabel(success, "success", "rejected")).Inc()
}

func (m *Metrics) recordStoreError(operation string) {
	if m == nil {
		return
	}

	m.storeErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) recordIntegrityError() {
	if m == nil {
		return
	}

	m.integrityErrors.Inc()
}

func (m *Metrics) observeStore(operation string, start time.Time) {
	if m == nil {
		return
	}

	m.storeDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func resultLabel(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
