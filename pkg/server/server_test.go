package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bastion-hq/palisade/pkg/allocation"
	"bastion-hq/palisade/pkg/config"
	"bastion-hq/palisade/pkg/fasttrack"
	"bastion-hq/palisade/pkg/intake/types"
	"bastion-hq/palisade/pkg/telemetry/metrics"
)

// discardLogger returns a logger that drops all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns a fully defaulted configuration.
func testConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

// testGate builds a gate over the default rule chain.
func testGate(t *testing.T) *fasttrack.Gate {
	t.Helper()

	gate, err := fasttrack.NewGate(allocation.NewEvaluator(), discardLogger())
	if err != nil {
		t.Fatalf("failed to build gate: %v", err)
	}
	return gate
}

// testTemplate builds a valid eight-field intake template.
func testTemplate(t *testing.T) *fasttrack.Template {
	t.Helper()

	fields := make([]fasttrack.TemplateField, 0, fasttrack.RequiredFieldCount)
	for i := 0; i < fasttrack.RequiredFieldCount; i++ {
		fields = append(fields, fasttrack.TemplateField{
			ID:    fmt.Sprintf("field-%d", i+1),
			Label: fmt.Sprintf("Field %d", i+1),
		})
	}
	tpl := &fasttrack.Template{
		Version:        "2024.2",
		Name:           "standard-intake",
		RequiredFields: fields,
	}
	if err := tpl.Validate(); err != nil {
		t.Fatalf("test template invalid: %v", err)
	}
	return tpl
}

// newTestServer builds a server with sane test defaults, letting each test
// adjust the options before construction.
func newTestServer(t *testing.T, mutate func(*Options)) *Server {
	t.Helper()

	evaluator := allocation.NewEvaluator()
	gate, err := fasttrack.NewGate(evaluator, discardLogger())
	if err != nil {
		t.Fatalf("failed to build gate: %v", err)
	}

	opts := Options{
		Config: testConfig(),
		Gate:   gate,
		Rules:  evaluator,
		Logger: discardLogger(),
		Version: VersionInfo{
			Version:   "1.2.3",
			Commit:    "abc1234",
			BuildTime: "2026-08-25T00:00:00Z",
		},
	}
	if mutate != nil {
		mutate(&opts)
	}

	srv, err := New(opts)
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}
	return srv
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{
			name:    "missing config",
			opts:    Options{Gate: testGate(t)},
			wantErr: "config is required",
		},
		{
			name:    "missing gate",
			opts:    Options{Config: testConfig()},
			wantErr: "gate is required",
		},
		{
			name: "config and gate suffice",
			opts: Options{Config: testConfig(), Gate: testGate(t), Logger: discardLogger()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, err := New(tt.opts)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if srv == nil {
				t.Fatal("expected server, got nil")
			}
		})
	}
}

func TestServer_AllocationRoute(t *testing.T) {
	srv := newTestServer(t, nil)
	handler := srv.Handler()

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/allocations",
		`{"cui": true, "system_scope": "internal"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header on response")
	}

	var resp types.AllocationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ControlCount != 110 {
		t.Errorf("expected 110 controls, got %d", resp.ControlCount)
	}
	if resp.LOELevel != string(allocation.LOEDFARS) {
		t.Errorf("expected LOE DFARS, got %s", resp.LOELevel)
	}
	if resp.RuleID != allocation.RuleCUIOverride {
		t.Errorf("expected rule %s, got %s", allocation.RuleCUIOverride, resp.RuleID)
	}
	if resp.DecisionID == "" {
		t.Error("expected a decision ID")
	}
}

func TestServer_AllocationRoute_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/v1/allocations", "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("expected Allow: POST, got %q", allow)
	}
}

func TestServer_RulesRoute(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/v1/rules", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp types.RulesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if want := len(allocation.DefaultRuleChain()); resp.Count != want {
		t.Errorf("expected %d rules, got %d", want, resp.Count)
	}
	if resp.Rules[0].ID != allocation.RuleCUIOverride {
		t.Errorf("expected first rule %s, got %s", allocation.RuleCUIOverride, resp.Rules[0].ID)
	}
}

func TestServer_RulesRoute_NotMountedWithoutLister(t *testing.T) {
	srv := newTestServer(t, func(o *Options) {
		o.Rules = nil
	})

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/v1/rules", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestServer_Probes(t *testing.T) {
	srv := newTestServer(t, nil)
	handler := srv.Handler()

	t.Run("liveness", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Errorf("expected ok status in body, got %s", rec.Body.String())
		}
	})

	t.Run("readiness", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/ready", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("version", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/version", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var info map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
			t.Fatalf("failed to decode version info: %v", err)
		}
		if info["version"] != "1.2.3" {
			t.Errorf("expected version 1.2.3, got %s", info["version"])
		}
		if info["commit"] != "abc1234" {
			t.Errorf("expected commit abc1234, got %s", info["commit"])
		}
	})
}

func TestServer_Readiness_RequiresTemplateWhenFastTracking(t *testing.T) {
	gate := testGate(t)
	cfg := testConfig()
	cfg.Gate.FastTrackEnabled = true

	srv := newTestServer(t, func(o *Options) {
		o.Config = cfg
		o.Gate = gate
	})
	handler := srv.Handler()

	rec := doRequest(t, handler, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 before template install, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "template") {
		t.Errorf("expected template check in body, got %s", rec.Body.String())
	}

	if err := gate.SetTemplate(testTemplate(t)); err != nil {
		t.Fatalf("failed to install template: %v", err)
	}

	rec = doRequest(t, handler, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 after template install, got %d: %s",
			rec.Code, rec.Body.String())
	}
}

func TestServer_Checker_CustomCheckGatesReadiness(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.Checker().RegisterCheck("downstream", func(ctx context.Context) error {
		return fmt.Errorf("connection refused")
	})

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/ready", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "downstream") {
		t.Errorf("expected downstream check in body, got %s", rec.Body.String())
	}
}

func TestServer_MetricsRoute(t *testing.T) {
	cfg := testConfig()
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	srv := newTestServer(t, func(o *Options) {
		o.Config = cfg
		o.Metrics = collector
	})
	handler := srv.Handler()

	// Produce a decision so the allocation counters have samples.
	rec := doRequest(t, handler, http.MethodPost, "/api/v1/allocations",
		`{"public_data": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 from allocation, got %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, cfg.Telemetry.Metrics.Path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 from metrics endpoint, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "bastion_palisade_allocations_total") {
		t.Error("expected allocation counter in exposition")
	}
	if !strings.Contains(body, "bastion_palisade_http_requests_total") {
		t.Error("expected request counter in exposition")
	}
}

func TestServer_MetricsRoute_AbsentWithoutCollector(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/metrics", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/nope", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestServer_Lifecycle(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ListenAddress = "127.0.0.1:0"

	srv := newTestServer(t, func(o *Options) {
		o.Config = cfg
	})

	if srv.IsRunning() {
		t.Fatal("expected server not running before Start")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(context.Background())
	}()

	deadline := time.After(2 * time.Second)
	for !srv.IsRunning() {
		select {
		case err := <-errCh:
			t.Fatalf("server exited early: %v", err)
		case <-deadline:
			t.Fatal("server did not report running")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	if err := srv.Start(context.Background()); err == nil {
		t.Error("expected error starting an already running server")
	}

	srv.RequestShutdown()
	srv.RequestShutdown()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	if srv.IsRunning() {
		t.Error("expected server stopped after shutdown")
	}
}

func TestServer_TLSConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.TLSConfig)
		wantErr string
	}{
		{
			name: "missing cert file",
			mutate: func(c *config.TLSConfig) {
				c.CertFile = ""
				c.KeyFile = "/tmp/key.pem"
			},
			wantErr: "cert file not specified",
		},
		{
			name: "missing key file",
			mutate: func(c *config.TLSConfig) {
				c.CertFile = "/tmp/cert.pem"
				c.KeyFile = ""
			},
			wantErr: "key file not specified",
		},
		{
			name: "nonexistent cert file",
			mutate: func(c *config.TLSConfig) {
				c.CertFile = "/nonexistent/cert.pem"
				c.KeyFile = "/nonexistent/key.pem"
			},
			wantErr: "cert file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Server.TLS.Enabled = true
			tt.mutate(&cfg.Server.TLS)

			srv := newTestServer(t, func(o *Options) {
				o.Config = cfg
			})

			_, err := srv.configureTLS()
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
