package metrics

import (
	"time"

	"bastion-hq/palisade/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AllocationMetrics tracks decision outcomes of the rule chain and the
// fast-track gate.
type AllocationMetrics struct {
	allocationsTotal   *prometheus.CounterVec
	allocationDuration *prometheus.HistogramVec
	routingsTotal      *prometheus.CounterVec
	invalidTotal       prometheus.Counter
	templateReloads    *prometheus.CounterVec
}

// NewAllocationMetrics creates and registers allocation metrics.
func NewAllocationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AllocationMetrics {
	m := &AllocationMetrics{
		allocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "allocations_total",
				Help:      "Total allocation decisions by matched rule and LOE level",
			},
			[]string{"rule_id", "loe_level"},
		),
		allocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "allocation_duration_seconds",
				Help:      "Time spent producing an allocation decision",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"rule_id"},
		),
		routingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fasttrack_routings_total",
				Help:      "Fast-track gate routing outcomes (bypassed or forwarded)",
			},
			[]string{"outcome"},
		),
		invalidTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "invalid_selections_total",
				Help:      "Submissions rejected before rule evaluation",
			},
		),
		templateReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "template_reloads_total",
				Help:      "Intake template reload attempts by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		m.allocationsTotal,
		m.allocationDuration,
		m.routingsTotal,
		m.invalidTotal,
		m.templateReloads,
	)

	return m
}

// RecordAllocation records one decision outcome.
func (m *AllocationMetrics) RecordAllocation(ruleID, loeLevel string, duration time.Duration) {
	m.allocationsTotal.WithLabelValues(ruleID, loeLevel).Inc()
	m.allocationDuration.WithLabelValues(ruleID).Observe(duration.Seconds())
}

// RecordRouting records one fast-track gate outcome.
func (m *AllocationMetrics) RecordRouting(outcome string) {
	m.routingsTotal.WithLabelValues(outcome).Inc()
}

// RecordInvalid records one rejected submission.
func (m *AllocationMetrics) RecordInvalid() {
	m.invalidTotal.Inc()
}

// RecordTemplateReload records one template reload attempt.
func (m *AllocationMetrics) RecordTemplateReload(status string) {
	m.templateReloads.WithLabelValues(status).Inc()
}
