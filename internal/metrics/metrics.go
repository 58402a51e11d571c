package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "neuromap"

// Collector owns a private registry so tests can create as many as they like
type Collector struct {
	registry *prometheus.Registry

	proxyRequests *prometheus.CounterVec
	proxyDuration *prometheus.HistogramVec
	breakerState  *prometheus.GaugeVec

	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	detailRequests     *prometheus.CounterVec
	connections        prometheus.Gauge
}

// New creates and registers every metric
func New() *Collector {
	registry := prometheus.NewRegistry()

	proxyRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_requests_total",
			Help:      "Generation proxy requests by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	proxyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "proxy_upstream_duration_seconds",
			Help:      "Time spent waiting on the upstream model",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"backend"},
	)

	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "proxy_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"backend"},
	)

	generations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roadmap_generations_total",
			Help:      "Roadmap generation pipelines by outcome",
		},
		[]string{"outcome"},
	)

	generationDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "roadmap_generation_duration_seconds",
			Help:      "Wall time of a roadmap generation pipeline",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80},
		},
	)

	detailRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_detail_requests_total",
			Help:      "Node detail fetches by final state",
		},
		[]string{"state"},
	)

	connections := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open WebSocket connections",
		},
	)

	registry.MustRegister(
		proxyRequests,
		proxyDuration,
		breakerState,
		generations,
		generationDuration,
		detailRequests,
		connections,
	)

	return &Collector{
		registry:           registry,
		proxyRequests:      proxyRequests,
		proxyDuration:      proxyDuration,
		breakerState:       breakerState,
		generations:        generations,
		generationDuration: generationDuration,
		detailRequests:     detailRequests,
		connections:        connections,
	}
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ProxyRequest records one proxy request
func (c *Collector) ProxyRequest(backend, outcome string) {
	c.proxyRequests.WithLabelValues(backend, outcome).Inc()
}

// ProxyUpstream records how long an upstream call took
func (c *Collector) ProxyUpstream(backend string, d time.Duration) {
	c.proxyDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// BreakerState records the breaker state as a number
func (c *Collector) BreakerState(backend string, state int) {
	c.breakerState.WithLabelValues(backend).Set(float64(state))
}

// Generation records a finished roadmap pipeline
func (c *Collector) Generation(outcome string, d time.Duration) {
	c.generations.WithLabelValues(outcome).Inc()
	c.generationDuration.Observe(d.Seconds())
}

// DetailRequest records the final state of a detail fetch
func (c *Collector) DetailRequest(state string) {
	c.detailRequests.WithLabelValues(state).Inc()
}

// ConnectionOpened increments the open connection gauge
func (c *Collector) ConnectionOpened() {
	c.connections.Inc()
}

// ConnectionClosed decrements the open connection gauge
func (c *Collector) ConnectionClosed() {
	c.connections.Dec()
}
