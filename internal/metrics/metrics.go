// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registration methods
const (
	MethodPhone  = "phone"
	MethodFull   = "full"
	MethodGoogle = "google"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	Registrations  *prometheus.CounterVec
	Conflicts      *prometheus.CounterVec
	PhoneBackfills prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_registrations_total",
			Help: "Users created, by registration method.",
		}, []string{"method"}),
		Conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_conflicts_total",
			Help: "Rejected writes due to an existing phone, email or google id.",
		}, []string{"kind"}),
		PhoneBackfills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identity_phone_backfills_total",
			Help: "Pending Google accounts completed with a phone number.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.Registrations,
		m.Conflicts,
		m.PhoneBackfills,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registered counts a created user. Safe on a nil receiver so services can
// run without metrics in tests.
func (m *Metrics) Registered(method string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(method).Inc()
}

// Conflict counts a uniqueness rejection of the given kind.
func (m *Metrics) Conflict(kind string) {
	if m == nil {
		return
	}
	m.Conflicts.WithLabelValues(kind).Inc()
}

// Backfilled counts a completed phone backfill.
func (m *Metrics) Backfilled() {
	if m == nil {
		return
	}
	m.PhoneBackfills.Inc()
}
