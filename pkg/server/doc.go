// Package server provides the HTTP intake server for allocation requests.
//
// This package ties together the intake components (handlers, middleware,
// probes, metrics endpoint) and provides server lifecycle management
// including start, graceful shutdown, and health checks.
//
// # Architecture
//
// The server package is the top-level orchestrator that:
//   - Sets up HTTP routes and handlers
//   - Chains middleware for cross-cutting concerns
//   - Mounts health probes and the Prometheus endpoint
//   - Configures TLS termination
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "bastion-hq/palisade/pkg/allocation"
//	    "bastion-hq/palisade/pkg/config"
//	    "bastion-hq/palisade/pkg/fasttrack"
//	    "bastion-hq/palisade/pkg/server"
//	)
//
//	cfg := config.GetConfig()
//
//	evaluator := allocation.NewEvaluator()
//	gate, err := fasttrack.NewGate(evaluator, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv, err := server.New(server.Options{
//	    Config: cfg,
//	    Gate:   gate,
//	    Rules:  evaluator,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start blocks until shutdown
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
//   - POST /api/v1/allocations: allocation decisions
//   - GET  /api/v1/rules: rule chain introspection
//   - GET  /health, /ready, /version: probes (paths configurable)
//   - GET  /metrics: Prometheus exposition (path configurable)
//
// # Middleware Chain
//
// Requests pass through Recovery, Logging, Metrics, RequestID, trace
// context extraction (when tracing is enabled), CORS, and Timeout before
// reaching a handler.
//
// # Readiness
//
// The server registers two readiness checks: "config" (configuration
// loaded) and "template" (an intake template is installed whenever the
// fast-track flag expects one). /ready returns 503 until both pass.
// Additional checks can be registered through Checker() before Start.
//
// # Shutdown
//
// Start blocks on four events: context cancellation, SIGINT/SIGTERM, a
// server error, or RequestShutdown. All paths drain in-flight requests
// for up to the configured shutdown timeout.
package server
