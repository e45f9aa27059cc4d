// Package metrics collects Prometheus counters for outbound calls and signature checks.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eth_outcall"

// Outcome labels of an outbound call.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
)

// Metrics holds the collectors of one bridge instance on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	outcalls      *prometheus.CounterVec
	replicas      *prometheus.CounterVec
	cycles        prometheus.Counter
	verifications *prometheus.CounterVec
	queries       *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		outcalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "host",
				Name:      "requests_total",
				Help:      "Total number of outbound HTTP requests by outcome",
			},
			[]string{"outcome", "code"},
		),
		replicas: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "host",
				Name:      "replica_responses_total",
				Help:      "Total number of replica executions by result",
			},
			[]string{"result"},
		),
		cycles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "host",
				Name:      "cycles_consumed_total",
				Help:      "Total cycles debited for outbound requests",
			},
		),
		verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bridge",
				Name:      "signature_verifications_total",
				Help:      "Total number of signature verifications by result",
			},
			[]string{"result"},
		),
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bridge",
				Name:      "contract_queries_total",
				Help:      "Total number of contract view queries by function, network and outcome",
			},
			[]string{"function", "network", "outcome"},
		),
	}
	m.registry.MustRegister(m.outcalls, m.replicas, m.cycles, m.verifications, m.queries)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOutcall counts one outbound request with its outcome and rejection code.
func (m *Metrics) ObserveOutcall(outcome, code string) {
	if m == nil {
		return
	}
	m.outcalls.WithLabelValues(outcome, code).Inc()
}

// ObserveReplica counts one replica execution result.
func (m *Metrics) ObserveReplica(result string) {
	if m == nil {
		return
	}
	m.replicas.WithLabelValues(result).Inc()
}

// AddCycles adds debited cycles.
func (m *Metrics) AddCycles(cycles uint64) {
	if m == nil {
		return
	}
	m.cycles.Add(float64(cycles))
}

// ObserveVerification counts one signature verification result.
func (m *Metrics) ObserveVerification(result string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(result).Inc()
}

// ObserveQuery counts one contract view query.
func (m *Metrics) ObserveQuery(function, network, outcome string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(function, network, outcome).Inc()
}

// Collectors exposes the individual collectors for inspection in tests.
func (m *Metrics) Collectors() (outcalls, replicas *prometheus.CounterVec, cycles prometheus.Counter, verifications, queries *prometheus.CounterVec) {
	return m.outcalls, m.replicas, m.cycles, m.verifications, m.queries
}
