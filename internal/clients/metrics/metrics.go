package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the client module's Prometheus metrics.
type Metrics struct {
	ClientsCreated    prometheus.Counter
	ClientsDeleted    prometheus.Counter
	JoinDuration      prometheus.Histogram
	JoinOrphans       prometheus.Counter
	SampleReadsServed prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ClientsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clientview_clients_created_total",
			Help: "Total number of clients created through the consistency enforcer",
		}),
		ClientsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clientview_clients_deleted_total",
			Help: "Total number of party records deleted",
		}),
		JoinDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clientview_join_duration_seconds",
			Help:    "Time spent fetching and joining the three collections",
			Buckets: prometheus.DefBuckets,
		}),
		JoinOrphans: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clientview_join_orphans_total",
			Help: "Addresses excluded from the client view because no party references them",
		}),
		SampleReadsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clientview_sample_reads_total",
			Help: "Client list reads served from sample data while the store was disconnected",
		}),
	}
}

func (m *Metrics) IncrementClientsCreated() {
	m.ClientsCreated.Inc()
}

func (m *Metrics) AddClientsDeleted(n int64) {
	m.ClientsDeleted.Add(float64(n))
}

func (m *Metrics) ObserveJoin(seconds float64, orphans int) {
	m.JoinDuration.Observe(seconds)
	m.JoinOrphans.Add(float64(orphans))
}

func (m *Metrics) IncrementSampleReads() {
	m.SampleReadsServed.Inc()
}
