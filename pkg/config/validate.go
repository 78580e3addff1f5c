package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateGate(&cfg.Gate)...)
	errs = append(errs, validateIntake(&cfg.Intake)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "server.cors.max_age",
			Message: "max age must be non-negative",
		})
	}

	// TLS validation
	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.cert_file",
				Message: "certificate file is required when TLS is enabled",
			})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.key_file",
				Message: "key file is required when TLS is enabled",
			})
		}
	}
	validTLSVersions := map[string]bool{"": true, "1.2": true, "1.3": true}
	if !validTLSVersions[cfg.TLS.MinVersion] {
		errs = append(errs, FieldError{
			Field:   "server.tls.min_version",
			Message: fmt.Sprintf("invalid TLS version %q: must be '1.2' or '1.3'", cfg.TLS.MinVersion),
		})
	}
	if cfg.TLS.ReloadInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "server.tls.cert_reload_interval",
			Message: "certificate reload interval must be non-negative",
		})
	}

	return errs
}

// validateGate validates fast-track gate configuration.
func validateGate(cfg *GateConfig) []FieldError {
	var errs []FieldError

	validModes := map[string]bool{"file": true, "git": true}
	if cfg.Template.Mode == "" {
		errs = append(errs, FieldError{
			Field:   "gate.template.mode",
			Message: "mode is required",
		})
	} else if !validModes[cfg.Template.Mode] {
		errs = append(errs, FieldError{
			Field:   "gate.template.mode",
			Message: fmt.Sprintf("invalid mode %q: must be 'file' or 'git'", cfg.Template.Mode),
		})
	}

	if cfg.Template.Mode == "file" && cfg.Template.FilePath == "" {
		errs = append(errs, FieldError{
			Field:   "gate.template.file_path",
			Message: "file path is required when mode is 'file'",
		})
	}

	if cfg.Template.Mode == "git" {
		errs = append(errs, validateGitTemplate(&cfg.Template.Git)...)
	}

	return errs
}

// validateGitTemplate validates Git template source configuration.
func validateGitTemplate(cfg *GitTemplateConfig) []FieldError {
	var errs []FieldError

	if cfg.Repository == "" {
		errs = append(errs, FieldError{
			Field:   "gate.template.git.repository",
			Message: "repository is required when mode is 'git'",
		})
	}
	if cfg.Branch == "" {
		errs = append(errs, FieldError{
			Field:   "gate.template.git.branch",
			Message: "branch is required when mode is 'git'",
		})
	}
	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "gate.template.git.path",
			Message: "path is required when mode is 'git'",
		})
	}

	validAuthTypes := map[string]bool{"": true, "none": true, "token": true, "ssh": true}
	if !validAuthTypes[cfg.Auth.Type] {
		errs = append(errs, FieldError{
			Field:   "gate.template.git.auth.type",
			Message: fmt.Sprintf("invalid auth type %q: must be 'none', 'token', or 'ssh'", cfg.Auth.Type),
		})
	}
	if cfg.Auth.Type == "token" && cfg.Auth.Token == "" {
		errs = append(errs, FieldError{
			Field:   "gate.template.git.auth.token",
			Message: "token is required when auth type is 'token'",
		})
	}
	if cfg.Auth.Type == "ssh" && cfg.Auth.SSHKeyPath == "" {
		errs = append(errs, FieldError{
			Field:   "gate.template.git.auth.ssh_key_path",
			Message: "SSH key path is required when auth type is 'ssh'",
		})
	}

	if cfg.Poll.Enabled {
		if cfg.Poll.Interval <= 0 {
			errs = append(errs, FieldError{
				Field:   "gate.template.git.poll.interval",
				Message: "poll interval must be positive when polling is enabled",
			})
		}
		if cfg.Poll.Timeout <= 0 {
			errs = append(errs, FieldError{
				Field:   "gate.template.git.poll.timeout",
				Message: "poll timeout must be positive when polling is enabled",
			})
		}
	}

	if cfg.Clone.Depth < 0 {
		errs = append(errs, FieldError{
			Field:   "gate.template.git.clone.depth",
			Message: "clone depth must be non-negative",
		})
	}

	return errs
}

// validateIntake validates intake configuration.
func validateIntake(cfg *IntakeConfig) []FieldError {
	var errs []FieldError

	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "intake.request_timeout",
			Message: "request timeout must be positive",
		})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "intake.max_body_bytes",
			Message: "max body bytes must be non-negative",
		})
	}
	if cfg.MaxBodyBytes > 10*1024*1024 { // 10MB is excessive for a selection payload
		errs = append(errs, FieldError{
			Field:   "intake.max_body_bytes",
			Message: "max body bytes exceeds reasonable limit (10MB)",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
		for i, bucket := range cfg.Metrics.DurationBuckets {
			if bucket <= 0 {
				errs = append(errs, FieldError{
					Field:   "telemetry.metrics.duration_buckets",
					Message: fmt.Sprintf("bucket %d must be positive", i),
				})
			}
		}
	}

	if cfg.Stats.Enabled {
		if cfg.Stats.Schedule == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.stats.schedule",
				Message: "schedule is required when stats reporting is enabled",
			})
		} else if _, err := cron.ParseStandard(cfg.Stats.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.stats.schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Stats.Schedule, err),
			})
		}
	}

	if cfg.Health.Enabled {
		paths := []struct {
			field string
			value string
		}{
			{"telemetry.health.liveness_path", cfg.Health.LivenessPath},
			{"telemetry.health.readiness_path", cfg.Health.ReadinessPath},
			{"telemetry.health.version_path", cfg.Health.VersionPath},
		}
		for _, p := range paths {
			if p.value == "" {
				errs = append(errs, FieldError{
					Field:   p.field,
					Message: "path is required when health checks are enabled",
				})
			} else if p.value[0] != '/' {
				errs = append(errs, FieldError{
					Field:   p.field,
					Message: "path must start with /",
				})
			}
		}
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
		validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
		if !validSamplers[cfg.Tracing.Sampler] {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0.0 || cfg.Tracing.SampleRatio > 1.0 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: fmt.Sprintf("sample ratio must be between 0.0 and 1.0, got %v", cfg.Tracing.SampleRatio),
			})
		}
		if cfg.Tracing.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.timeout",
				Message: "timeout must be positive",
			})
		}
	}

	return errs
}
