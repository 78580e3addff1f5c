package metrics

import (
	"time"

	"bastion-hq/palisade/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Fast-track routing outcomes.
const (
	// OutcomeBypassed means the gate served the pre-approved baseline.
	OutcomeBypassed = "bypassed"
	// OutcomeForwarded means the gate forwarded to the rule chain.
	OutcomeForwarded = "forwarded"
)

// Template reload statuses.
const (
	ReloadSuccess = "success"
	ReloadFailure = "failure"
)

// Collector owns all Prometheus metrics for the allocation service and
// provides a unified recording interface. Label sets are fixed and small
// (rule identifiers, LOE levels, route patterns), so metrics are
// pre-registered on a private registry with no cardinality guard.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	allocationMetrics *AllocationMetrics
	requestMetrics    *RequestMetrics
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh private registry is
// created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "bastion"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "palisade"
	}
	if len(cfg.DurationBuckets) == 0 {
		// Rule-chain evaluations are sub-millisecond; HTTP requests should
		// stay under a second
		cfg.DurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.allocationMetrics = NewAllocationMetrics(cfg, registry)
	c.requestMetrics = NewRequestMetrics(cfg, registry)

	return c
}

// RecordAllocation records a completed allocation decision.
//
// Parameters:
//   - ruleID: identifier of the matched rule (or the fast-track baseline)
//   - loeLevel: resulting level of effort ("A", "B", "C", "D", "DFARS")
//   - duration: time spent deciding
func (c *Collector) RecordAllocation(ruleID, loeLevel string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.allocationMetrics.RecordAllocation(ruleID, loeLevel, duration)
}

// RecordFastTrackRouting records a gate routing outcome
// (OutcomeBypassed or OutcomeForwarded).
func (c *Collector) RecordFastTrackRouting(outcome string) {
	if !c.config.Enabled {
		return
	}

	c.allocationMetrics.RecordRouting(outcome)
}

// RecordInvalidSelection records a submission rejected before evaluation.
func (c *Collector) RecordInvalidSelection() {
	if !c.config.Enabled {
		return
	}

	c.allocationMetrics.RecordInvalid()
}

// RecordTemplateReload records a template reload attempt
// (ReloadSuccess or ReloadFailure).
func (c *Collector) RecordTemplateReload(status string) {
	if !c.config.Enabled {
		return
	}

	c.allocationMetrics.RecordTemplateReload(status)
}

// RecordHTTPRequest records a completed HTTP request.
//
// Parameters:
//   - method: HTTP method
//   - path: route pattern (not the raw URL, to keep label cardinality fixed)
//   - status: response status code as a string
//   - duration: total request duration
//   - responseBytes: response body size, ignored when <= 0
func (c *Collector) RecordHTTPRequest(method, path, status string, duration time.Duration, responseBytes int) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordRequest(method, path, status, duration, responseBytes)
}

// IncRequestsInFlight increments the in-flight request gauge.
func (c *Collector) IncRequestsInFlight() {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.IncInFlight()
}

// DecRequestsInFlight decrements the in-flight request gauge.
func (c *Collector) DecRequestsInFlight() {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.DecInFlight()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
