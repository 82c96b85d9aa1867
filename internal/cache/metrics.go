package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts cache traffic per scope.
type Metrics struct {
	Hits      *prometheus.CounterVec
	Misses    *prometheus.CounterVec
	Evictions *prometheus.CounterVec
	Errors    *prometheus.CounterVec
}

// NewMetrics creates the cache counters and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invitations",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups served from the cache.",
		}, []string{"scope"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invitations",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that fell through to the store.",
		}, []string{"scope"}),
		Evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invitations",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Keys evicted after a committed mutation.",
		}, []string{"scope"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invitations",
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Backend and codec failures, by operation.",
		}, []string{"op"}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Hits, m.Misses, m.Evictions, m.Errors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
