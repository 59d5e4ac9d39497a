package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RateLimitRejected     prometheus.Counter
	RateLimitStoreErrors  prometheus.Counter
	RateLimitBreakerState prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		RateLimitRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clientview_rate_limit_rejected_total",
			Help: "Total number of gateway requests rejected by the rate limiter",
		}),
		RateLimitStoreErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clientview_rate_limit_store_errors_total",
			Help: "Total number of errors returned by the primary rate limit store",
		}),
		RateLimitBreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clientview_rate_limit_breaker_open",
			Help: "1 while the rate limiter is serving from its in-memory fallback",
		}),
	}
}

func (m *Metrics) IncrementRejected() {
	m.RateLimitRejected.Inc()
}

func (m *Metrics) IncrementStoreErrors() {
	m.RateLimitStoreErrors.Inc()
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if open {
		m.RateLimitBreakerState.Set(1)
		return
	}
	m.RateLimitBreakerState.Set(0)
}
