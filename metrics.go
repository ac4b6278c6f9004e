package trackd

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the Prometheus counters a BoundedMap updates. All fields
// are optional from the map's point of view; NewMetrics wires the full set.
type Metrics struct {
	Puts           prometheus.Counter
	EvictionPasses prometheus.Counter
	EvictedEntries prometheus.Counter
	EvictionErrors prometheus.Counter
}

// NewMetrics builds the counter set and registers it with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Puts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trackd",
			Name:      "puts_total",
			Help:      "Tracking entries inserted.",
		}),
		EvictionPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trackd",
			Name:      "eviction_passes_total",
			Help:      "Shrink passes triggered by a full table.",
		}),
		EvictedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trackd",
			Name:      "evicted_entries_total",
			Help:      "Tracking entries removed by eviction.",
		}),
		EvictionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trackd",
			Name:      "eviction_errors_total",
			Help:      "Shrink passes aborted by a store or observer error.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Puts, m.EvictionPasses, m.EvictedEntries, m.EvictionErrors)
	}
	return m
}
