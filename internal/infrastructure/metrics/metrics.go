// Package metrics exposes prometheus collectors for dispatch outcomes and the
// HTTP transport.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Bukinich-Pavel/resume-bot/internal/application/dispatch"
)

const namespace = "resume_bot"

// Metrics owns a private registry so tests and multiple instances never
// collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	updates         *prometheus.CounterVec
	apiErrors       *prometheus.CounterVec
	dispatchSeconds *prometheus.HistogramVec
	duplicates      prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpPending  *prometheus.GaugeVec
}

var _ dispatch.Observer = (*Metrics)(nil)

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "updates_total",
				Help:      "Dispatched updates by kind, menu trigger and status",
			},
			[]string{"kind", "trigger", "status"},
		),
		apiErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "telegram_api_errors_total",
				Help:      "Failed dispatches by Bot API error code",
			},
			[]string{"code"},
		),
		dispatchSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent handling one update",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
		duplicates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicate_updates_total",
				Help:      "Re-delivered updates skipped before dispatch",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "code"},
		),
		httpPending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_pending",
				Help:      "Number of HTTP requests being processed",
			},
			[]string{"method", "path"},
		),
	}

	m.registry.MustRegister(
		m.updates,
		m.apiErrors,
		m.dispatchSeconds,
		m.duplicates,
		m.httpRequests,
		m.httpPending,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe records one dispatch outcome.
func (m *Metrics) Observe(_ context.Context, o dispatch.Outcome) {
	kind := o.Kind.String()
	trigger := o.Trigger
	if trigger == "" {
		trigger = "none"
	}

	m.updates.WithLabelValues(kind, trigger, o.Status.String()).Inc()
	m.dispatchSeconds.WithLabelValues(kind).Observe(o.Duration.Seconds())
	if o.ErrorCode != 0 {
		m.apiErrors.WithLabelValues(strconv.Itoa(o.ErrorCode)).Inc()
	}
}

// DuplicateSkipped counts one re-delivered update.
func (m *Metrics) DuplicateSkipped() {
	m.duplicates.Inc()
}

// RequestStarted marks a request in flight and returns a func that completes it.
func (m *Metrics) RequestStarted(method, path string) func(code int) {
	pending := m.httpPending.WithLabelValues(method, path)
	pending.Inc()
	return func(code int) {
		pending.Dec()
		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(code)).Inc()
	}
}
