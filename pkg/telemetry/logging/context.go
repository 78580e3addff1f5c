package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// ProgramKey is the context key for the submitting program name.
	ProgramKey contextKey = "program"

	// DecisionIDKey is the context key for allocation decision IDs.
	DecisionIDKey contextKey = "decision_id"

	// ClientIPKey is the context key for the client address.
	ClientIPKey contextKey = "client_ip"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithProgram adds the submitting program name to the context.
func WithProgram(ctx context.Context, program string) context.Context {
	return context.WithValue(ctx, ProgramKey, program)
}

// GetProgram retrieves the program name from the context.
func GetProgram(ctx context.Context) string {
	if program, ok := ctx.Value(ProgramKey).(string); ok {
		return program
	}
	return ""
}

// WithDecisionID adds an allocation decision ID to the context.
func WithDecisionID(ctx context.Context, decisionID string) context.Context {
	return context.WithValue(ctx, DecisionIDKey, decisionID)
}

// GetDecisionID retrieves the decision ID from the context.
func GetDecisionID(ctx context.Context) string {
	if decisionID, ok := ctx.Value(DecisionIDKey).(string); ok {
		return decisionID
	}
	return ""
}

// WithClientIP adds the client address to the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPKey, ip)
}

// GetClientIP retrieves the client address from the context.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ClientIPKey).(string); ok {
		return ip
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if program := GetProgram(ctx); program != "" {
		fields = append(fields, "program", program)
	}
	if decisionID := GetDecisionID(ctx); decisionID != "" {
		fields = append(fields, "decision_id", decisionID)
	}
	if ip := GetClientIP(ctx); ip != "" {
		fields = append(fields, "client_ip", ip)
	}

	return fields
}
