package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for the client list cache.
// A nil *CacheMetrics records nothing.
type CacheMetrics struct {
	Hits          prometheus.Counter
	Misses        prometheus.Counter
	Invalidations prometheus.Counter
	Evictions     prometheus.Counter
}

// NewCacheMetrics creates and registers cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client_cache",
			Name:      "hits_total",
			Help:      "Total number of client list cache hits.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client_cache",
			Name:      "misses_total",
			Help:      "Total number of client list cache misses.",
		}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client_cache",
			Name:      "invalidations_total",
			Help:      "Total number of client list cache invalidations.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client_cache",
			Name:      "evictions_total",
			Help:      "Total number of expired snapshots dropped by the eviction timer.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Invalidations, m.Evictions)
	return m
}

func (m *CacheMetrics) Hit() {
	if m != nil {
		m.Hits.Inc()
	}
}

func (m *CacheMetrics) Miss() {
	if m != nil {
		m.Misses.Inc()
	}
}

func (m *CacheMetrics) Invalidated() {
	if m != nil {
		m.Invalidations.Inc()
	}
}

func (m *CacheMetrics) Evicted() {
	if m != nil {
		m.Evictions.Inc()
	}
}
