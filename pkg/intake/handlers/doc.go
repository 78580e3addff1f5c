// Package handlers provides HTTP request handlers for the intake server.
//
// This package implements the endpoint handlers for allocation submissions
// and rule chain introspection. Each handler is responsible for parsing
// requests, invoking the routing gate or evaluator, recording telemetry,
// and formatting responses.
//
// # Handler Types
//
//   - AllocateHandler: POST /api/v1/allocations, the decision endpoint
//   - RulesHandler: GET /api/v1/rules, ordered rule chain introspection
//
// Probe endpoints (/health, /ready, /version) are mounted by the
// telemetry/health package; the Prometheus endpoint by telemetry/metrics.
//
// # Request Flow
//
// The allocation handler follows a consistent pattern:
//
//  1. Parse request body (size-limited JSON decoding)
//  2. Convert the wire request to a domain selection (scope parsing)
//  3. Route through the fast-track gate or the rule chain
//  4. Mint a decision ID and record metrics, stats and span attributes
//  5. Write the decision response
//  6. Handle errors with the standard error envelope
//
// # Error Handling
//
// All handlers return errors in the standard envelope:
//
//	{
//	  "error": {
//	    "message": "invalid selection: system_scope \"dmz\" must be ...",
//	    "type": "invalid_request_error",
//	    "param": "system_scope",
//	    "code": "invalid_value"
//	  }
//	}
//
// # Statelessness
//
// Decisions are returned and logged, never stored. The decision_id exists
// so a client-held response can be matched to server logs, not as a lookup
// key; there is no GET endpoint for past decisions.
package handlers
