// Package metrics exposes Prometheus instrumentation for the proving service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry so
// tests can build as many instances as they like without duplicate
// registration panics.
type Metrics struct {
	registry *prometheus.Registry

	proofDuration *prometheus.HistogramVec
	proofsTotal   *prometheus.CounterVec

	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec

	priceFetches *prometheus.CounterVec
}

// New builds and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{registry: registry}

	m.proofDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "privlend",
		Subsystem: "zkproof",
		Name:      "proof_duration_seconds",
		Help:      "Proof generation duration by circuit.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"circuit", "status"})

	m.proofsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "privlend",
		Subsystem: "zkproof",
		Name:      "proofs_total",
		Help:      "Proof generation attempts by circuit and outcome.",
	}, []string{"circuit", "status"})

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "privlend",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method", "path"})

	m.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "privlend",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	m.priceFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "privlend",
		Subsystem: "oracle",
		Name:      "price_fetches_total",
		Help:      "Price feed lookups by cache outcome.",
	}, []string{"outcome"})

	registry.MustRegister(m.proofDuration, m.proofsTotal, m.requestDuration, m.requestsTotal, m.priceFetches)
	return m
}

// ObserveProof implements lending.ProofTelemetry.
func (m *Metrics) ObserveProof(kind string, d time.Duration, success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	m.proofDuration.WithLabelValues(kind, status).Observe(d.Seconds())
	m.proofsTotal.WithLabelValues(kind, status).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	m.requestDuration.WithLabelValues(method, path).Observe(d.Seconds())
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// ObservePriceFetch records a price lookup; outcome is "hit", "miss" or
// "error".
func (m *Metrics) ObservePriceFetch(outcome string) {
	m.priceFetches.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
