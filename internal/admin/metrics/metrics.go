package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Mutations *prometheus.CounterVec
	Affected  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Mutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clientview_admin_mutations_total",
			Help: "Gateway operations applied, by operation and collection",
		}, []string{"op", "collection"}),
		Affected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clientview_admin_documents_affected_total",
			Help: "Documents modified or deleted through the gateway",
		}, []string{"op"}),
	}
}

// RecordMutation labels unknown collections as "other" to bound cardinality
// on raw routes.
func (m *Metrics) RecordMutation(op, collection string, known bool, affected int64) {
	if !known {
		collection = "other"
	}
	m.Mutations.WithLabelValues(op, collection).Inc()
	m.Affected.WithLabelValues(op).Add(float64(affected))
}
