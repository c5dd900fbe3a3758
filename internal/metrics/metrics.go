// Package metrics exposes pipeline counters on a private Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quizfeed/internal/domain"
)

const namespace = "quizfeed"

// Notification outcomes.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Metrics groups every counter the pipeline updates.
type Metrics struct {
	registry *prometheus.Registry

	Candidates           prometheus.Counter
	Identifiers          *prometheus.CounterVec
	TranslationFallbacks prometheus.Counter
	Notifications        *prometheus.CounterVec
	Runs                 prometheus.Counter
	LastRun              *prometheus.GaugeVec
}

// New registers the counters on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Candidate identifiers that passed deduplication.",
		}),
		Identifiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identifiers_total",
			Help:      "Identifiers by terminal state (skipped, aborted, notified, mark_failed).",
		}, []string{"state"}),
		TranslationFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_fallbacks_total",
			Help:      "Text fields that kept their original text after the retry budget ran out.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Post-commit hook executions by hook and outcome.",
		}, []string{"hook", "outcome"}),
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed pipeline runs.",
		}),
		LastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_identifiers",
			Help:      "Identifiers of the most recent scheduled run by result (pending, persisted, failed).",
		}, []string{"result"}),
	}

	m.registry.MustRegister(m.Candidates, m.Identifiers, m.TranslationFallbacks, m.Notifications, m.Runs, m.LastRun)
	return m
}

// ObserveReport records the shape of a finished run. Failed counts aborted
// identifiers and those persisted without a marker.
func (m *Metrics) ObserveReport(r domain.RunReport) {
	m.LastRun.WithLabelValues("pending").Set(float64(r.Pending))
	m.LastRun.WithLabelValues("persisted").Set(float64(r.Persisted))
	m.LastRun.WithLabelValues("failed").Set(float64(r.Aborted + r.MarkFailed))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
