// Package metrics exposes Prometheus instrumentation for bill issuance and
// RPC traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Step outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Metrics holds the service's collectors.
type Metrics struct {
	registry *prometheus.Registry

	billsIssued      prometheus.Counter
	numberingRetries prometheus.Counter
	stepOutcomes     *prometheus.CounterVec
	stepDuration     *prometheus.HistogramVec
	rpcRequests      *prometheus.CounterVec
	rpcDuration      *prometheus.HistogramVec
}

// New creates Metrics on a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		billsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billdesk",
			Name:      "bills_issued_total",
			Help:      "Bills persisted by the issuance service.",
		}),
		numberingRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billdesk",
			Name:      "bill_number_retries_total",
			Help:      "Bill number allocations retried after a duplicate.",
		}),
		stepOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billdesk",
			Name:      "issuance_step_total",
			Help:      "Outcomes of best-effort issuance steps.",
		}, []string{"step", "outcome"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billdesk",
			Name:      "issuance_step_duration_seconds",
			Help:      "Duration of best-effort issuance steps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billdesk",
			Name:      "rpc_requests_total",
			Help:      "RPC requests by procedure and code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billdesk",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}
	reg.MustRegister(m.billsIssued, m.numberingRetries, m.stepOutcomes, m.stepDuration, m.rpcRequests, m.rpcDuration)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) BillIssued() {
	if m == nil {
		return
	}
	m.billsIssued.Inc()
}

func (m *Metrics) NumberingRetried(string, int) {
	if m == nil {
		return
	}
	m.numberingRetries.Inc()
}

// ObserveStep records one best-effort step ("render" or "email").
func (m *Metrics) ObserveStep(step, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.stepOutcomes.WithLabelValues(step, outcome).Inc()
	if outcome != OutcomeSkipped {
		m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
	}
}

// ObserveRPC records one RPC.
func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(d.Seconds())
}
