// Package metrics holds the Prometheus instruments of the alias registry.
// All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeCreated     = "created"
	OutcomeReused      = "reused"
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
)

type Metrics struct {
	registry *prometheus.Registry

	// Mint results by outcome
	Mints *prometheus.CounterVec

	// Resolve results by outcome
	Resolves *prometheus.CounterVec

	// Slug collisions retried during mint
	SlugConflicts prometheus.Counter

	// Rows removed by the cleanup job
	CleanupDeleted prometheus.Counter

	RequestDuration *prometheus.HistogramVec
}

// New registers every instrument on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Mints: f.NewCounterVec(prometheus.CounterOpts{
			Name: "factshare_alias_mints_total",
			Help: "Alias mint requests by outcome",
		}, []string{"outcome"}),

		Resolves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "factshare_alias_resolves_total",
			Help: "Alias resolve requests by outcome",
		}, []string{"outcome"}),

		SlugConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "factshare_alias_slug_conflicts_total",
			Help: "Slug collisions that forced a retry",
		}),

		CleanupDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "factshare_alias_cleanup_deleted_total",
			Help: "Expired aliases removed by the cleanup job",
		}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "factshare_http_request_duration_seconds",
			Help:    "HTTP request duration by route and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncMint(outcome string) {
	if m != nil {
		m.Mints.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncResolve(outcome string) {
	if m != nil {
		m.Resolves.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncSlugConflict() {
	if m != nil {
		m.SlugConflicts.Inc()
	}
}

func (m *Metrics) AddCleanupDeleted(n int64) {
	if m != nil && n > 0 {
		m.CleanupDeleted.Add(float64(n))
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
