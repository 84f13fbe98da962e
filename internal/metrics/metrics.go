// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RefreshSuccess   prometheus.Counter
	RefreshFailures  prometheus.Counter
	LayerFailures    prometheus.Counter
	StationsWithData prometheus.Gauge
	SSEClients       prometheus.Gauge
}

// New creates and registers the service metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RefreshSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hydromap_station_refresh_total",
			Help: "Station refreshes that completed successfully.",
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hydromap_station_refresh_failures_total",
			Help: "Station refreshes that failed and were skipped.",
		}),
		LayerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hydromap_layer_fetch_failures_total",
			Help: "Feature layer fetches that failed.",
		}),
		StationsWithData: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hydromap_stations_with_data",
			Help: "Stations currently holding at least one observation.",
		}),
		SSEClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hydromap_sse_clients",
			Help: "Currently connected SSE clients.",
		}),
	}

	m.registry.MustRegister(
		m.RefreshSuccess,
		m.RefreshFailures,
		m.LayerFailures,
		m.StationsWithData,
		m.SSEClients,
	)
	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
