// Package prometheus records pipeline metrics with the Prometheus client.
package prometheus

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "docqa"

// Operation label values.
const (
	opIngest = "ingest"
	opAsk    = "ask"
)

// Metrics holds the collectors for ingest and ask on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	chunksIngested  prometheus.Counter
	sourcesReturned prometheus.Histogram
}

// New creates and registers the collectors. An empty namespace uses DefaultNamespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Ingest and ask requests by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "End-to-end ingest and ask latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"operation"},
	)

	m.chunksIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_ingested_total",
			Help:      "Chunks committed by successful ingests.",
		},
	)

	m.sourcesReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ask_sources",
			Help:      "Source chunks returned per successful ask.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		},
	)

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.chunksIngested,
		m.sourcesReturned,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveIngest records one ingest attempt.
func (m *Metrics) ObserveIngest(chunks int, elapsed time.Duration, err error) {
	m.observe(opIngest, elapsed, err)
	if err == nil {
		m.chunksIngested.Add(float64(chunks))
	}
}

// ObserveAsk records one ask attempt.
func (m *Metrics) ObserveAsk(sources int, elapsed time.Duration, err error) {
	m.observe(opAsk, elapsed, err)
	if err == nil {
		m.sourcesReturned.Observe(float64(sources))
	}
}

func (m *Metrics) observe(op string, elapsed time.Duration, err error) {
	m.requestsTotal.WithLabelValues(op, outcome(err)).Inc()
	m.requestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// outcome maps an error to a bounded label value.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnsupportedType):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration"
	case errors.Is(err, domain.ErrExternalService):
		return "external"
	default:
		return "error"
	}
}
