// Package telemetry provides observability for Palisade.
//
// # Overview
//
// The telemetry subpackages implement structured logging, Prometheus
// metrics, scheduled allocation statistics, health check endpoints, and
// OpenTelemetry distributed tracing. Together they give visibility into
// how submissions move through the fast-track gate and the rule chain
// while keeping per-request overhead low.
//
// # Components
//
//   - logging: slog-based structured logging with field redaction
//   - metrics: Prometheus metrics collection and the /metrics endpoint
//   - stats: windowed allocation summaries logged on a cron schedule
//   - health: liveness, readiness, and version endpoints
//   - tracing: OpenTelemetry distributed tracing over OTLP
//
// # Usage
//
//	cfg := config.GetConfig()
//
//	logger, err := logging.New(logging.Config{
//	    Level:        cfg.Telemetry.Logging.Level,
//	    Format:       cfg.Telemetry.Logging.Format,
//	    RedactFields: cfg.Telemetry.Logging.RedactFields,
//	})
//	logger.Info("request processed", "duration_ms", 123)
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordAllocation("cui-override", "DFARS", time.Millisecond)
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	ctx, span := tracer.Start(ctx, "palisade.intake.allocate")
//	defer span.End()
//
// # Redaction
//
// Program identifiers are competition sensitive. The logging redactor masks
// configured fields plus builtin token and authorization patterns before any
// log line is written; see pkg/telemetry/logging.
package telemetry
