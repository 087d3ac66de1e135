package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics holds Prometheus metrics for commands sent to Redis and
// queries sent to PostgreSQL. A nil *StoreMetrics records nothing.
type StoreMetrics struct {
	OpsTotal   *prometheus.CounterVec
	OpDuration *prometheus.HistogramVec
	DialErrors *prometheus.CounterVec
}

// NewStoreMetrics creates and registers store metrics on the given registry.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of store operations, by store, operation and status.",
		}, []string{"store", "operation", "status"}),
		OpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of store operations in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"store", "operation"}),
		DialErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "dial_errors_total",
			Help:      "Total number of failed connection attempts, by store.",
		}, []string{"store"}),
	}

	reg.MustRegister(m.OpsTotal, m.OpDuration, m.DialErrors)
	return m
}

// Observe records one operation. Callers decide what counts as an error.
func (m *StoreMetrics) Observe(store, operation string, took time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.OpsTotal.WithLabelValues(store, operation, status).Inc()
	m.OpDuration.WithLabelValues(store, operation).Observe(took.Seconds())
}

func (m *StoreMetrics) DialFailed(store string) {
	if m != nil {
		m.DialErrors.WithLabelValues(store).Inc()
	}
}
