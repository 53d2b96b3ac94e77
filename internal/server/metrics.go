package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/wildaware/internal/model"
)

// Metrics holds the API's prometheus collectors on a private registry
type Metrics struct {
	registry        *prometheus.Registry
	classifications *prometheus.CounterVec
	requests        *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	sightings       prometheus.Counter
}

// NewMetrics registers the collectors, including Go runtime and process stats
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildaware",
			Name:      "classifications_total",
			Help:      "Classified messages by species guess, urgency and intent.",
		}, []string{"species", "urgency", "intent"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wildaware",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildaware",
			Name:      "rate_limited_total",
			Help:      "Chat requests rejected by the per-client rate limit.",
		}),
		sightings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildaware",
			Name:      "sightings_reported_total",
			Help:      "Sighting reports accepted.",
		}),
	}
	m.registry.MustRegister(
		m.classifications,
		m.requests,
		m.rateLimited,
		m.sightings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveClassification counts one classification result
func (m *Metrics) ObserveClassification(r model.ClassificationResult) {
	m.classifications.WithLabelValues(r.SpeciesGuess, string(r.Urgency), string(r.Intent)).Inc()
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
