package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics holds Prometheus metrics for ledger reads and writes.
// A nil *LedgerMetrics records nothing.
type LedgerMetrics struct {
	RecordsWritten  *prometheus.CounterVec
	BackendErrors   *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
}

// NewLedgerMetrics creates and registers ledger metrics on the given registry.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "records_written_total",
			Help:      "Total number of records appended, by collection.",
		}, []string{"collection"}),
		BackendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "backend_errors_total",
			Help:      "Total number of failed backend calls, by operation.",
		}, []string{"operation"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "backend_duration_seconds",
			Help:      "Duration of backend calls in seconds, by operation.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
	}

	reg.MustRegister(m.RecordsWritten, m.BackendErrors, m.BackendDuration)
	return m
}

func (m *LedgerMetrics) Written(collection string) {
	if m != nil {
		m.RecordsWritten.WithLabelValues(collection).Inc()
	}
}

// Observe records one backend call.
func (m *LedgerMetrics) Observe(operation string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.BackendDuration.WithLabelValues(operation).Observe(took.Seconds())
	if err != nil {
		m.BackendErrors.WithLabelValues(operation).Inc()
	}
}
