// Package prometheus exposes the engine's operational metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every collector the engine emits. A Metrics value carries
// its own registry so tests can construct isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	// QueriesTotal counts answered queries by resolved section and outcome.
	QueriesTotal *prometheus.CounterVec

	// GuardBlocksTotal counts queries intercepted by the safety guard, by
	// guard rule.
	GuardBlocksTotal *prometheus.CounterVec

	// SectionSubstitutionsTotal counts answers served from a substitute
	// section (contraindications answered from warnings).
	SectionSubstitutionsTotal prometheus.Counter

	// RewriteFallbacksTotal counts template answers shipped because the
	// rewriter failed or was disabled.
	RewriteFallbacksTotal prometheus.Counter

	// RetrievalDuration observes document-store retrieval latency by pass.
	RetrievalDuration *prometheus.HistogramVec
}

// New constructs and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vademecum",
			Name:      "queries_total",
			Help:      "Answered queries by resolved section and outcome.",
		}, []string{"section", "outcome"}),
		GuardBlocksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vademecum",
			Name:      "guard_blocks_total",
			Help:      "Queries intercepted by the safety guard, by rule.",
		}, []string{"rule"}),
		SectionSubstitutionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vademecum",
			Name:      "section_substitutions_total",
			Help:      "Answers served from a substitute section.",
		}),
		RewriteFallbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vademecum",
			Name:      "rewrite_fallbacks_total",
			Help:      "Template answers shipped because rewriting failed.",
		}),
		RetrievalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vademecum",
			Name:      "retrieval_duration_seconds",
			Help:      "Document store retrieval latency by pass.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pass"}),
	}
	reg.MustRegister(
		m.QueriesTotal,
		m.GuardBlocksTotal,
		m.SectionSubstitutionsTotal,
		m.RewriteFallbacksTotal,
		m.RetrievalDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
