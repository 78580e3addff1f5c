package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bastion-hq/palisade/pkg/intake/types"
)

// timeoutWriter serializes access to the underlying ResponseWriter so the
// handler goroutine and the timeout path cannot both write a response.
// After the deadline fires, handler writes are silently dropped.
type timeoutWriter struct {
	mu       sync.Mutex
	w        http.ResponseWriter
	timedOut bool
	written  bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.w.Header()
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return
	}
	tw.written = true
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.written = true
	return tw.w.Write(b)
}

// markTimedOut flips the writer into timeout mode and reports whether the
// handler had already started a response. When it has, the 504 cannot be
// delivered and the connection is simply left to the partial response.
func (tw *timeoutWriter) markTimedOut() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
	return tw.written
}

// TimeoutMiddleware enforces a per-request timeout using
// context.WithTimeout. If the timeout is exceeded, the request context is
// cancelled and a 504 Gateway Timeout error is returned.
//
// The timeout applies to the entire request processing pipeline. Handlers
// should check context.Done() to detect cancellation. A timeout of zero
// disables enforcement.
//
// Example usage:
//
//	handler = TimeoutMiddleware(30*time.Second, logger)(handler)
func TimeoutMiddleware(timeout time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{w: w}
			done := make(chan struct{})

			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return

			case <-ctx.Done():
				if ctx.Err() != context.DeadlineExceeded {
					// Client went away; nothing to write.
					return
				}

				started := tw.markTimedOut()
				requestID := GetRequestID(r.Context())

				logger.ErrorContext(r.Context(), "request timeout",
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout.String(),
				)

				if started {
					return
				}

				errResp := types.NewGatewayTimeoutError(
					"Request timeout: the request took too long to complete",
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusGatewayTimeout)
				_ = json.NewEncoder(w).Encode(errResp)
			}
		})
	}
}
