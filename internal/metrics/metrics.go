// Package metrics counts pipeline outcomes with Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of a generation or evaluation call.
const (
	OutcomeCached   = "cached"
	OutcomeProvider = "provider"
	OutcomeFallback = "fallback"
)

// Metrics holds the pipeline counters.
type Metrics struct {
	Generations      *prometheus.CounterVec
	Evaluations      *prometheus.CounterVec
	ProviderFailures *prometheus.CounterVec
}

// New creates the counters and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentencecraft",
			Name:      "generations_total",
			Help:      "Example sentence generations by provider and outcome.",
		}, []string{"provider", "outcome"}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentencecraft",
			Name:      "evaluations_total",
			Help:      "Learner sentence evaluations by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentencecraft",
			Name:      "provider_failures_total",
			Help:      "Failed provider calls by provider and failure kind.",
		}, []string{"provider", "kind"}),
	}

	if reg != nil {
		reg.MustRegister(m.Generations, m.Evaluations, m.ProviderFailures)
	}
	return m
}

// Generation counts one generation call.
func (m *Metrics) Generation(provider, outcome string) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(provider, outcome).Inc()
}

// Evaluation counts one evaluation call.
func (m *Metrics) Evaluation(provider, outcome string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(provider, outcome).Inc()
}

// ProviderFailure counts one failed provider call.
func (m *Metrics) ProviderFailure(provider, kind string) {
	if m == nil {
		return
	}
	m.ProviderFailures.WithLabelValues(provider, kind).Inc()
}

// WriteTextfile writes everything gathered by g to path in the Prometheus
// text format, for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
