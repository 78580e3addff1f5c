// Package metrics provides Prometheus metrics collection for Palisade.
//
// # Overview
//
// The metrics package tracks allocation decisions, fast-track gate routing,
// template reloads, and HTTP request handling. All metrics are registered on
// a private registry owned by the Collector, so tests and embedders never
// collide with the global default registry.
//
// # Metrics Categories
//
//   - Allocation Metrics: decision count by rule and LOE level, decision
//     duration, gate routing outcomes, rejected submissions, template reloads
//   - Request Metrics: HTTP request count, duration, in-flight gauge, and
//     response sizes
//
// # Usage
//
//	collector := metrics.NewCollector(cfg, nil)
//
//	collector.RecordAllocation("cui-override", "DFARS", 80*time.Microsecond)
//	collector.RecordFastTrackRouting(metrics.OutcomeBypassed)
//	collector.RecordTemplateReload(metrics.ReloadSuccess)
//
//	http.Handle(cfg.Path, collector.Handler())
//
// # Label Cardinality
//
// Every label set is fixed at build time: rule identifiers come from the
// compiled rule chain, LOE levels are a five-value enum, and HTTP paths are
// route patterns rather than raw URLs. No runtime cardinality guard is
// needed.
//
// # Prometheus Endpoint
//
// Metrics are exposed in standard Prometheus format:
//
//	# HELP bastion_palisade_allocations_total Total allocation decisions by matched rule and LOE level
//	# TYPE bastion_palisade_allocations_total counter
//	bastion_palisade_allocations_total{loe_level="DFARS",rule_id="cui-override"} 42
package metrics
