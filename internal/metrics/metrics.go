// Package metrics exposes Prometheus collectors for the HTTP surface and the
// generation pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"promptagent/internal/domain"
	"promptagent/internal/entitlement"
)

const namespace = "promptagent"

// Metrics owns a private registry so tests can build independent instances.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
	generations  *prometheus.CounterVec
	quotaDenials *prometheus.CounterVec
	tierChanges  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generation attempts by feature and outcome.",
		}, []string{"feature", "outcome"}),
		quotaDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_denials_total",
			Help:      "Requests denied by the entitlement policy.",
		}, []string{"feature", "reason"}),
		tierChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_transitions_total",
			Help:      "Session upgrades and resets.",
		}, []string{"kind"}),
	}
	m.Registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		m.generations,
		m.quotaDenials,
		m.tierChanges,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RequestStarted() { m.httpInFlight.Inc() }

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveGeneration(feature domain.FeatureKey, outcome string) {
	m.generations.WithLabelValues(string(feature), outcome).Inc()
}

func (m *Metrics) ObserveDenial(feature domain.FeatureKey, reason entitlement.Reason) {
	m.quotaDenials.WithLabelValues(string(feature), string(reason)).Inc()
}

func (m *Metrics) ObserveTransition(kind string) {
	m.tierChanges.WithLabelValues(kind).Inc()
}
