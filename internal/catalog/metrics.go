package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelOp     = "op"
	labelResult = "result"
)

// Metrics covers index rebuilds and query latency. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Queries  *prometheus.HistogramVec
	Builds   *prometheus.CounterVec
	Products prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Queries: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_query_duration_seconds",
				Help:    "Catalog query latency",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{labelOp},
		),
		Builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_index_builds_total",
				Help: "Index rebuilds by result",
			},
			[]string{labelResult},
		),
		Products: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_products",
				Help: "Products in the current index",
			},
		),
	}

	reg.MustRegister(m.Queries, m.Builds, m.Products)
	return m
}

func (m *Metrics) observeQuery(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) observeBuild(err error, products int) {
	if m == nil {
		return
	}
	if err != nil {
		m.Builds.WithLabelValues("error").Inc()
		return
	}
	m.Builds.WithLabelValues("ok").Inc()
	m.Products.Set(float64(products))
}
