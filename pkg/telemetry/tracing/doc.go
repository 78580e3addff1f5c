// Package tracing provides OpenTelemetry distributed tracing for Palisade.
//
// # Overview
//
// The tracing package implements W3C Trace Context propagation, span
// creation, and trace export over OTLP gRPC. It gives visibility into how an
// allocation request moves through intake, the fast-track gate, and the rule
// chain, with negligible overhead when disabled.
//
// # Distributed Tracing
//
// Each traced request becomes a hierarchy of spans. A span records:
//   - Operation name and duration
//   - Attributes (key-value pairs)
//   - Events (timestamped logs within the span)
//   - Trace context (trace ID, span ID, sampling decision)
//
// # Trace Context Propagation
//
// The package implements W3C Trace Context (https://www.w3.org/TR/trace-context/)
// for propagating trace context across HTTP boundaries:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//	tracestate: congo=t61rcWkgMzE
//
// # Sampling Strategies
//
// Three sampling strategies are supported:
//   - always: Sample all traces (development/debugging)
//   - never: Sample no traces
//   - ratio: Sample a percentage of traces (production)
//
// # Usage
//
//	cfg := &config.TracingConfig{
//	    Enabled:     true,
//	    ServiceName: "palisade",
//	    Endpoint:    "localhost:4317",
//	    Sampler:     "ratio",
//	    SampleRatio: 0.1,
//	}
//	tracer, err := tracing.New(cfg, version)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "palisade.intake.allocate")
//	defer span.End()
//
//	tracing.SetSubmissionAttributes(span, requestID, program, scope)
//	tracing.SetDecisionAttributes(span, "cui-override", "DFARS", 110, false)
//
// # Span Hierarchy
//
// Spans form a hierarchy representing the call tree:
//
//	palisade.intake.allocate (1.2ms)
//	├── palisade.fasttrack.route (0.3ms)
//	└── palisade.allocation.evaluate (0.1ms)
//
// # HTTP Integration
//
// Extract trace context from incoming HTTP requests:
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, "handle_request")
//	defer span.End()
//
// Inject trace context into outgoing HTTP requests:
//
//	req, _ := http.NewRequestWithContext(ctx, "POST", url, body)
//	tracing.Inject(ctx, req.Header)
//
// # Export
//
// Spans are exported in batches over OTLP gRPC:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    insecure: true
//	    timeout: 10s
package tracing
