package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bastion-hq/palisade/pkg/intake/types"
)

func TestTimeoutMiddleware(t *testing.T) {
	t.Run("passes through fast requests", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})

		wrapped := TimeoutMiddleware(1*time.Second, discardLogger())(handler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status code = %d, want 200", w.Code)
		}
		if w.Body.String() != "OK" {
			t.Errorf("Body = %q, want OK", w.Body.String())
		}
	})

	t.Run("returns 504 when handler exceeds timeout", func(t *testing.T) {
		release := make(chan struct{})
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
		})
		defer close(release)

		wrapped := TimeoutMiddleware(20*time.Millisecond, discardLogger())(handler)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/allocations", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusGatewayTimeout {
			t.Fatalf("Status code = %d, want 504", w.Code)
		}

		var errResp types.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
			t.Fatalf("failed to decode error response: %v", err)
		}
		if errResp.Error.Type != types.ErrorTypeGatewayTimeout {
			t.Errorf("expected type %q, got %q", types.ErrorTypeGatewayTimeout, errResp.Error.Type)
		}
		if errResp.Error.Code != types.CodeRequestTimeout {
			t.Errorf("expected code %q, got %q", types.CodeRequestTimeout, errResp.Error.Code)
		}
	})

	t.Run("cancels handler context on timeout", func(t *testing.T) {
		cancelled := make(chan struct{})
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
			close(cancelled)
		})

		wrapped := TimeoutMiddleware(10*time.Millisecond, discardLogger())(handler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		select {
		case <-cancelled:
		case <-time.After(1 * time.Second):
			t.Fatal("handler context was not cancelled on timeout")
		}
	})

	t.Run("drops late handler writes after timeout", func(t *testing.T) {
		wrote := make(chan error, 1)
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
			_, err := w.Write([]byte("too late"))
			wrote <- err
		})

		wrapped := TimeoutMiddleware(10*time.Millisecond, discardLogger())(handler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		select {
		case err := <-wrote:
			if err != http.ErrHandlerTimeout {
				t.Errorf("late write error = %v, want http.ErrHandlerTimeout", err)
			}
		case <-time.After(1 * time.Second):
			t.Fatal("handler never attempted its late write")
		}

		if w.Code != http.StatusGatewayTimeout {
			t.Errorf("Status code = %d, want 504", w.Code)
		}
	})

	t.Run("zero timeout disables enforcement", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				t.Error("expected no deadline with zero timeout")
			}
			w.WriteHeader(http.StatusOK)
		})

		wrapped := TimeoutMiddleware(0, discardLogger())(handler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status code = %d, want 200", w.Code)
		}
	})
}
