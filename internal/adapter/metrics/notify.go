package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotificationMetrics holds Prometheus metrics for email rendering and delivery.
// A nil *NotificationMetrics records nothing.
type NotificationMetrics struct {
	EmailsSent    *prometheus.CounterVec
	EmailsFailed  *prometheus.CounterVec
	Renders       *prometheus.CounterVec
	BreakerState  *prometheus.GaugeVec
	BreakerChange *prometheus.CounterVec
}

// NewNotificationMetrics creates and registers notification metrics on the given registry.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	m := &NotificationMetrics{
		EmailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "sent_total",
			Help:      "Total number of emails delivered, by kind.",
		}, []string{"kind"}),
		EmailsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "failed_total",
			Help:      "Total number of emails that could not be delivered, by kind.",
		}, []string{"kind"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "renders_total",
			Help:      "Total number of rendered emails, by kind and source (ai or template).",
		}, []string{"kind", "source"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state by component (0=closed, 1=half-open, 2=open).",
		}, []string{"component"}),
		BreakerChange: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state_changes_total",
			Help:      "Circuit breaker state transitions by component and new state.",
		}, []string{"component", "state"}),
	}

	reg.MustRegister(m.EmailsSent, m.EmailsFailed, m.Renders, m.BreakerState, m.BreakerChange)
	return m
}

func (m *NotificationMetrics) Delivered(kind string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.EmailsFailed.WithLabelValues(kind).Inc()
		return
	}
	m.EmailsSent.WithLabelValues(kind).Inc()
}

func (m *NotificationMetrics) Rendered(kind, source string) {
	if m != nil {
		m.Renders.WithLabelValues(kind, source).Inc()
	}
}

// BreakerChanged records a transition. value follows the BreakerState gauge encoding.
func (m *NotificationMetrics) BreakerChanged(component, state string, value float64) {
	if m == nil {
		return
	}
	m.BreakerChange.WithLabelValues(component, state).Inc()
	m.BreakerState.WithLabelValues(component).Set(value)
}
