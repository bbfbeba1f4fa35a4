package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts HTTP requests by method, route pattern and status.
	RequestsTotal *prometheus.CounterVec

	// AggregationDuration observes how long one filter/aggregate/rank pass
	// takes, labeled by metric choice.
	AggregationDuration *prometheus.HistogramVec

	// DatasetReloads counts dataset reloads by outcome.
	DatasetReloads *prometheus.CounterVec

	// DatasetRecords tracks the size of the cached canonical record set.
	DatasetRecords prometheus.Gauge

	// WebSocketClients tracks currently connected websocket clients.
	WebSocketClients prometheus.Gauge
}

// NewMetrics creates and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enrollscope",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		AggregationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "enrollscope",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of one filter/aggregate/rank pass.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"metric"}),
		DatasetReloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enrollscope",
			Name:      "dataset_reloads_total",
			Help:      "Dataset load and reload attempts by outcome.",
		}, []string{"outcome"}),
		DatasetRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "enrollscope",
			Name:      "dataset_records",
			Help:      "Number of canonical records in the cached dataset.",
		}),
		WebSocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "enrollscope",
			Name:      "websocket_clients",
			Help:      "Currently connected websocket clients.",
		}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
