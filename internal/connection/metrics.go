package connection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports connection transitions.
type Metrics struct {
	Connected   prometheus.Gauge
	Transitions *prometheus.CounterVec
}

// NewMetrics registers the connection metrics with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Connected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clientview_store_connected",
			Help: "1 when the document store is reachable, 0 otherwise",
		}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clientview_store_transitions_total",
			Help: "Store connectivity transitions by target state",
		}, []string{"state"}),
	}
}

func (m *Metrics) record(s State) {
	if s == Connected {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
	m.Transitions.WithLabelValues(s.String()).Inc()
}
