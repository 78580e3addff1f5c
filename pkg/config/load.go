package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention PALISADE_SECTION_FIELD (e.g., PALISADE_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format PALISADE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("PALISADE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("PALISADE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("PALISADE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("PALISADE_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("PALISADE_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("PALISADE_SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}
	if val := os.Getenv("PALISADE_SERVER_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.TLS.Enabled = b
		}
	}
	if val := os.Getenv("PALISADE_SERVER_TLS_CERT_FILE"); val != "" {
		cfg.Server.TLS.CertFile = val
	}
	if val := os.Getenv("PALISADE_SERVER_TLS_KEY_FILE"); val != "" {
		cfg.Server.TLS.KeyFile = val
	}

	// Gate overrides
	if val := os.Getenv("PALISADE_GATE_FAST_TRACK_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Gate.FastTrackEnabled = b
		}
	}
	if val := os.Getenv("PALISADE_GATE_TEMPLATE_MODE"); val != "" {
		cfg.Gate.Template.Mode = val
	}
	if val := os.Getenv("PALISADE_GATE_TEMPLATE_FILE_PATH"); val != "" {
		cfg.Gate.Template.FilePath = val
	}
	if val := os.Getenv("PALISADE_GATE_TEMPLATE_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Gate.Template.Watch = b
		}
	}
	if val := os.Getenv("PALISADE_GATE_TEMPLATE_GIT_REPOSITORY"); val != "" {
		cfg.Gate.Template.Git.Repository = val
	}
	if val := os.Getenv("PALISADE_GATE_TEMPLATE_GIT_BRANCH"); val != "" {
		cfg.Gate.Template.Git.Branch = val
	}
	if val := os.Getenv("PALISADE_GATE_TEMPLATE_GIT_PATH"); val != "" {
		cfg.Gate.Template.Git.Path = val
	}
	if val := os.Getenv("PALISADE_GATE_TEMPLATE_GIT_AUTH_TYPE"); val != "" {
		cfg.Gate.Template.Git.Auth.Type = val
	}
	if val := os.Getenv("PALISADE_GATE_TEMPLATE_GIT_AUTH_TOKEN"); val != "" {
		cfg.Gate.Template.Git.Auth.Token = val
	}
	if val := os.Getenv("PALISADE_GATE_TEMPLATE_GIT_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Gate.Template.Git.Poll.Interval = d
		}
	}

	// Intake overrides
	if val := os.Getenv("PALISADE_INTAKE_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Intake.RequestTimeout = d
		}
	}
	if val := os.Getenv("PALISADE_INTAKE_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Intake.MaxBodyBytes = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("PALISADE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("PALISADE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("PALISADE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("PALISADE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("PALISADE_TELEMETRY_STATS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Stats.Enabled = b
		}
	}
	if val := os.Getenv("PALISADE_TELEMETRY_STATS_SCHEDULE"); val != "" {
		cfg.Telemetry.Stats.Schedule = val
	}
	if val := os.Getenv("PALISADE_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("PALISADE_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("PALISADE_TELEMETRY_TRACING_SAMPLER"); val != "" {
		cfg.Telemetry.Tracing.Sampler = val
	}
}
