// Package intake provides the HTTP surface for allocation submissions.
//
// The intake layer is the network-facing boundary of the allocation
// service. It accepts classification selections over JSON, routes them
// through the fast-track gate to the rule chain, and returns control
// allocation decisions. Decisions are returned and logged, never stored.
//
// # Architecture
//
// The intake layer follows a middleware-based architecture with clean
// separation of concerns:
//
//   - handlers: Request processing (allocations, rule introspection)
//   - middleware: Cross-cutting concerns (logging, CORS, request ID,
//     recovery, timeouts)
//   - types: Wire request/response data structures
//
// This package itself holds the shared plumbing: size-limited request
// parsing, JSON response writing, and error-to-envelope mapping.
//
// # Endpoints
//
//   - POST /api/v1/allocations: submit a selection, receive a decision
//   - GET  /api/v1/rules: the evaluation chain in priority order
//   - GET  /health, /ready, /version: probes (telemetry/health)
//   - GET  /metrics: Prometheus exposition (telemetry/metrics)
//
// # Error Format
//
// Errors use a single JSON envelope with machine-readable type and code:
//
//	{
//	  "error": {
//	    "message": "request body exceeds maximum size of 1048576 bytes",
//	    "type": "invalid_request_error",
//	    "param": "body",
//	    "code": "request_too_large"
//	  }
//	}
//
// HandleError maps internal error types onto this envelope; handlers never
// build status codes by hand.
package intake
