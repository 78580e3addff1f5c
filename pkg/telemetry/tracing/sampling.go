package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	// SamplerAlways samples all traces
	SamplerAlways = "always"

	// SamplerNever samples no traces
	SamplerNever = "never"

	// SamplerRatio samples a percentage of traces
	SamplerRatio = "ratio"
)

// newSampler creates a sampler for the given strategy.
//
// # Sampling Strategies
//
// AlwaysOn samples every trace. Suited to development and debugging:
//
//	telemetry:
//	  tracing:
//	    sampler: always
//
// AlwaysOff samples no traces:
//
//	telemetry:
//	  tracing:
//	    sampler: never
//
// TraceIDRatioBased samples based on a hash of the trace ID, so the same
// trace ID always gets the same decision across services:
//
//	telemetry:
//	  tracing:
//	    sampler: ratio
//	    sample_ratio: 0.1  # Sample 10% of traces
//
// # Parent-Based Sampling
//
// Every sampler is wrapped in ParentBased(), which defers to the parent
// span's sampling decision when one exists:
//   - If parent span is sampled, the child is sampled
//   - If parent span is not sampled, the child is not sampled
//   - If there is no parent span, the configured sampler decides
func newSampler(strategy string, ratio float64) (sdktrace.Sampler, error) {
	var base sdktrace.Sampler

	switch strategy {
	case SamplerAlways:
		base = sdktrace.AlwaysSample()

	case SamplerNever:
		base = sdktrace.NeverSample()

	case SamplerRatio:
		if ratio < 0.0 || ratio > 1.0 {
			return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
		}
		base = sdktrace.TraceIDRatioBased(ratio)

	default:
		return nil, fmt.Errorf("unknown sampler strategy: %s (valid: always, never, ratio)", strategy)
	}

	return sdktrace.ParentBased(base), nil
}
