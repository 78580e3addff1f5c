package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a fully defaulted configuration that passes validation.
func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("expected valid config, got: %v", err)
	}
}

func TestValidate_MissingListenAddress(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ListenAddress = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "server.listen_address") {
		t.Errorf("expected listen address error, got: %v", err)
	}
}

func TestValidate_NegativeTimeouts(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ReadTimeout = -1 * time.Second
	cfg.Server.WriteTimeout = -1 * time.Second

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(verr.Errors), verr)
	}
}

func TestValidate_TLSRequiresCertAndKey(t *testing.T) {
	cfg := validConfig()
	cfg.Server.TLS.Enabled = true

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "server.tls.cert_file") {
		t.Errorf("expected cert file error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "server.tls.key_file") {
		t.Errorf("expected key file error, got: %v", err)
	}

	cfg.Server.TLS.CertFile = "/etc/palisade/tls.crt"
	cfg.Server.TLS.KeyFile = "/etc/palisade/tls.key"
	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config with cert and key, got: %v", err)
	}
}

func TestValidate_InvalidTLSVersion(t *testing.T) {
	cfg := validConfig()
	cfg.Server.TLS.MinVersion = "1.1"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "server.tls.min_version") {
		t.Errorf("expected TLS version error, got: %v", err)
	}
}

func TestValidate_NegativeTLSReloadInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Server.TLS.ReloadInterval = -1 * time.Minute

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "server.tls.cert_reload_interval") {
		t.Errorf("expected reload interval error, got: %v", err)
	}
}

func TestValidate_InvalidTemplateMode(t *testing.T) {
	cfg := validConfig()
	cfg.Gate.Template.Mode = "s3"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "gate.template.mode") {
		t.Errorf("expected mode error, got: %v", err)
	}
}

func TestValidate_GitModeRequiresRepository(t *testing.T) {
	cfg := validConfig()
	cfg.Gate.Template.Mode = "git"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "gate.template.git.repository") {
		t.Errorf("expected repository error, got: %v", err)
	}

	cfg.Gate.Template.Git.Repository = "https://github.com/example/intake-templates.git"
	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid git config, got: %v", err)
	}
}

func TestValidate_GitAuth(t *testing.T) {
	tests := []struct {
		name      string
		auth      GitAuthConfig
		wantField string
	}{
		{
			name:      "unknown type",
			auth:      GitAuthConfig{Type: "kerberos"},
			wantField: "gate.template.git.auth.type",
		},
		{
			name:      "token without token",
			auth:      GitAuthConfig{Type: "token"},
			wantField: "gate.template.git.auth.token",
		},
		{
			name:      "ssh without key path",
			auth:      GitAuthConfig{Type: "ssh"},
			wantField: "gate.template.git.auth.ssh_key_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Gate.Template.Mode = "git"
			cfg.Gate.Template.Git.Repository = "https://github.com/example/templates.git"
			cfg.Gate.Template.Git.Auth = tt.auth

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("expected error for %s, got: %v", tt.wantField, err)
			}
		})
	}
}

func TestValidate_InvalidStatsSchedule(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Stats.Enabled = true
	cfg.Telemetry.Stats.Schedule = "every hour or so"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "telemetry.stats.schedule") {
		t.Errorf("expected schedule error, got: %v", err)
	}
}

func TestValidate_ValidStatsSchedule(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Stats.Enabled = true
	cfg.Telemetry.Stats.Schedule = "*/15 * * * *"

	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid schedule, got: %v", err)
	}
}

func TestValidate_InvalidLoggingLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Logging.Level = "trace"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "telemetry.logging.level") {
		t.Errorf("expected logging level error, got: %v", err)
	}
}

func TestValidate_MetricsPathMustStartWithSlash(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Metrics.Path = "metrics"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "telemetry.metrics.path") {
		t.Errorf("expected metrics path error, got: %v", err)
	}
}

func TestValidationError_SingleError(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "server.listen_address", Message: "listen address is required"},
	}}

	msg := err.Error()
	if !strings.Contains(msg, "server.listen_address: listen address is required") {
		t.Errorf("unexpected message: %q", msg)
	}
	if strings.Contains(msg, "errors:") {
		t.Errorf("single error should not use multi-error format: %q", msg)
	}
}

func TestValidationError_MultipleErrors(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "first"},
		{Field: "b", Message: "second"},
	}}

	msg := err.Error()
	if !strings.Contains(msg, "2 errors") {
		t.Errorf("expected error count in message: %q", msg)
	}
	if !strings.Contains(msg, "a: first") || !strings.Contains(msg, "b: second") {
		t.Errorf("expected both errors listed: %q", msg)
	}
}
