// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements middleware functions that handle common
// functionality across all intake requests including request ID
// generation, logging, CORS, panic recovery, and timeout enforcement.
//
// # Middleware Chain
//
// Middleware functions are chained in a specific order:
//
//	handler = Recovery(Logging(Metrics(RequestID(CORS(Timeout(handler))))))
//
// Order (innermost to outermost):
//  1. Timeout: Enforce per-request timeout
//  2. CORS: Add Cross-Origin Resource Sharing headers
//  3. RequestID: Generate and propagate request ID
//  4. Metrics: Record request count, latency, and size
//  5. Logging: Log request/response details
//  6. Recovery: Recover from panics
//
// # Request ID
//
// RequestIDMiddleware generates a 32-character hex ID for each request:
//
//	X-Request-ID: a1b2c3d4e5f60718293a4b5c6d7e8f90
//
// The request ID is stored through the logging package's context keys, so
// every log line emitted for the request carries it without the handler
// passing it explicitly. Clients may supply their own ID in the
// X-Request-ID header and it is echoed back.
//
// # Logging
//
// LoggingMiddleware uses structured logging (log/slog) to record request
// details:
//
//	{
//	  "time": "2026-08-25T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/api/v1/allocations",
//	  "status": 200,
//	  "latency_ms": 2,
//	  "request_id": "a1b2c3d4..."
//	}
//
// # Recovery
//
// RecoveryMiddleware catches panics in handlers and converts them to HTTP
// 500 errors:
//
//	{
//	  "error": {
//	    "message": "An internal error occurred. Please try again later.",
//	    "type": "server_error",
//	    "code": "internal_error"
//	  }
//	}
//
// The panic stack trace is logged but not exposed to clients.
//
// # Timeout
//
// TimeoutMiddleware enforces a per-request timeout using
// context.WithTimeout. If the timeout is exceeded the handler's context is
// cancelled and the client receives 504 Gateway Timeout, unless the
// handler had already begun writing a response.
//
// # Thread Safety
//
// All middleware functions are safe for concurrent use.
package middleware
