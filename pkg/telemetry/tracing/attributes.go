package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions set common attributes on spans with consistent naming
// across the codebase.
//
// # Attribute Keys
//
// Standard attribute keys follow OpenTelemetry semantic conventions
// (http.*, rpc.*). Custom attribute keys use the "palisade.*" namespace:
//   - palisade.program: program identifier on a submission
//   - palisade.rule.id: the allocation rule that decided the outcome
//   - palisade.loe_level: assigned level of effort
//   - palisade.control_count: number of assigned security controls

// Common attribute keys used throughout the system
const (
	// Submission attributes
	AttrRequestID   = "palisade.request_id"
	AttrDecisionID  = "palisade.decision_id"
	AttrProgram     = "palisade.program"
	AttrSystemScope = "palisade.system_scope"

	// Decision attributes
	AttrRuleID       = "palisade.rule.id"
	AttrLOELevel     = "palisade.loe_level"
	AttrControlCount = "palisade.control_count"
	AttrFastTracked  = "palisade.fast_tracked"

	// Template attributes
	AttrTemplateVersion = "palisade.template.version"

	// Error attributes
	AttrErrorType = "palisade.error.type"
)

// SetSubmissionAttributes sets submission-related attributes on a span.
// Empty values are skipped.
//
// Example:
//
//	SetSubmissionAttributes(span, "req-123", "sentinel", "Internal")
func SetSubmissionAttributes(span trace.Span, requestID, program, systemScope string) {
	attrs := make([]attribute.KeyValue, 0, 3)

	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	if program != "" {
		attrs = append(attrs, attribute.String(AttrProgram, program))
	}
	if systemScope != "" {
		attrs = append(attrs, attribute.String(AttrSystemScope, systemScope))
	}

	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
}

// SetDecisionAttributes sets allocation decision attributes on a span.
//
// Example:
//
//	SetDecisionAttributes(span, "cui-override", "DFARS", 110, false)
func SetDecisionAttributes(span trace.Span, ruleID, loeLevel string, controlCount int, fastTracked bool) {
	span.SetAttributes(
		attribute.String(AttrRuleID, ruleID),
		attribute.String(AttrLOELevel, loeLevel),
		attribute.Int(AttrControlCount, controlCount),
		attribute.Bool(AttrFastTracked, fastTracked),
	)
}

// SetTemplateAttributes sets intake template attributes on a span.
func SetTemplateAttributes(span trace.Span, version string) {
	if version == "" {
		return
	}
	span.SetAttributes(attribute.String(AttrTemplateVersion, version))
}

// SetErrorAttributes records an error on a span and marks its status.
//
// Example:
//
//	SetErrorAttributes(span, err, "invalid_selection")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errorType != "" {
		span.SetAttributes(attribute.String(AttrErrorType, errorType))
	}
}

// AddEvent adds a timestamped event to a span.
//
// Example:
//
//	AddEvent(span, "template_reloaded", attribute.String(AttrTemplateVersion, v))
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
