package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// RequestRecorder receives per-request measurements from
// MetricsMiddleware. The telemetry metrics Collector satisfies it.
type RequestRecorder interface {
	RecordHTTPRequest(method, path, status string, duration time.Duration, responseBytes int)
	IncRequestsInFlight()
	DecRequestsInFlight()
}

// RoutePatterner reports the mux pattern that will serve a request.
// *http.ServeMux satisfies it. The pattern is used as the metric path
// label so that unmatched request paths cannot inflate label cardinality.
type RoutePatterner interface {
	Handler(r *http.Request) (http.Handler, string)
}

// MetricsMiddleware records request count, latency, in-flight gauge, and
// response size for every request. A nil recorder disables the middleware
// entirely. When routes is non-nil, the registered mux pattern replaces
// the raw URL path in metric labels and unmatched requests collapse to
// a single "unmatched" label value.
//
// Example usage:
//
//	handler = MetricsMiddleware(collector, mux)(handler)
func MetricsMiddleware(recorder RequestRecorder, routes RoutePatterner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			recorder.IncRequestsInFlight()
			defer recorder.DecRequestsInFlight()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			recorder.RecordHTTPRequest(
				r.Method,
				routeLabel(routes, r),
				strconv.Itoa(rw.statusCode),
				time.Since(startTime),
				rw.bytes,
			)
		})
	}
}

// routeLabel resolves the bounded path label for a request.
func routeLabel(routes RoutePatterner, r *http.Request) string {
	if routes == nil {
		return r.URL.Path
	}
	if _, pattern := routes.Handler(r); pattern != "" {
		return pattern
	}
	return "unmatched"
}
