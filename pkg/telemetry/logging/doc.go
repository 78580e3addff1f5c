// Package logging provides structured logging with credential redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Automatic redaction of credentials and sensitive submission fields
//   - Context-aware logging with request and decision IDs
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:        "info",
//	    Format:       "json",
//	    RedactFields: []string{"system-owner"},
//	})
//
//	logger.Info("allocation decided",
//	    "request_id", "req-123",
//	    "control_count", 56,
//	)
//
//	// Context-aware logging
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "processing")  // includes request_id
//
// # Redaction
//
// Tokens, bearer headers, passwords, emails, and SSNs are masked in string
// values. Values under sensitive key names (built-in credential names plus
// any configured RedactFields) are masked entirely. RedactMap produces a
// log-safe copy of an intake submission's field map.
package logging
