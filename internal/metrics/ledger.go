// internal/metrics/ledger.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics counts ledger operations and verification outcomes.
// A nil *LedgerMetrics is valid and records nothing.
type LedgerMetrics struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	verifications *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	facts         *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Ledger operations by name and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_operation_duration_seconds",
		Help:    "Duration of ledger operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_royalty_verifications_total",
		Help: "Resolved royalty verifications by resulting state.",
	}, []string{"state"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_callbacks_dropped_total",
		Help: "Decryption callbacks dropped without a state change.",
	}, []string{"reason"})
	facts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_facts_emitted_total",
		Help: "Facts appended to the ledger event log.",
	}, []string{"kind"})
	reg.MustRegister(operations, duration, verifications, dropped, facts)
	return &LedgerMetrics{
		operations:    operations,
		duration:      duration,
		verifications: verifications,
		dropped:       dropped,
		facts:         facts,
	}
}

// ObserveOperation records one finished operation. outcome is "ok" or an
// error kind.
func (m *LedgerMetrics) ObserveOperation(operation, outcome string, d time.Duration) {
	if m == nil || m.operations == nil {
		return
	}
	operation = normalizeLabel(operation)
	m.operations.WithLabelValues(operation, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *LedgerMetrics) IncVerification(state string) {
	if m == nil || m.verifications == nil {
		return
	}
	m.verifications.WithLabelValues(normalizeLabel(state)).Inc()
}

func (m *LedgerMetrics) IncDroppedCallback(reason string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *LedgerMetrics) IncFact(kind string) {
	if m == nil || m.facts == nil {
		return
	}
	m.facts.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
