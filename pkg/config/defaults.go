package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled          = true
	DefaultCORSMaxAge           = 3600 // 1 hour
	DefaultCORSAllowCredentials = false

	// TLS defaults
	DefaultTLSEnabled        = false
	DefaultTLSMinVersion     = "1.3"
	DefaultTLSReloadInterval = 5 * time.Minute

	// Gate defaults
	DefaultFastTrackEnabled = false
	DefaultTemplateMode     = "file"
	DefaultTemplateFilePath = "./template.yaml"
	DefaultTemplateWatch    = false

	// Git template source defaults
	DefaultGitBranch       = "main"
	DefaultGitPath         = "template.yaml"
	DefaultGitPollInterval = 30 * time.Second
	DefaultGitPollTimeout  = 10 * time.Second
	DefaultGitCloneDepth   = 1

	// Intake defaults
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = int64(1048576) // 1MB

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultPrometheusPath   = "/metrics"
	DefaultMetricsNamespace = "bastion"
	DefaultMetricsSubsystem = "palisade"
	DefaultStatsEnabled     = false
	DefaultStatsSchedule    = "0 * * * *"
	DefaultHealthEnabled    = true
	DefaultLivenessPath     = "/health"
	DefaultReadinessPath    = "/ready"
	DefaultVersionPath      = "/version"

	// Tracing defaults
	DefaultTracingEnabled     = false
	DefaultTracingServiceName = "palisade"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingTimeout     = 10 * time.Second
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ReloadInterval == 0 {
		cfg.Server.TLS.ReloadInterval = DefaultTLSReloadInterval
	}

	// CORS defaults
	applyCORSDefaults(cfg)

	// Gate defaults
	if cfg.Gate.Template.Mode == "" {
		cfg.Gate.Template.Mode = DefaultTemplateMode
	}
	if cfg.Gate.Template.FilePath == "" {
		cfg.Gate.Template.FilePath = DefaultTemplateFilePath
	}

	// Git template source defaults
	applyGitDefaults(&cfg.Gate.Template.Git)

	// Intake defaults
	if cfg.Intake.RequestTimeout == 0 {
		cfg.Intake.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Intake.MaxBodyBytes == 0 {
		cfg.Intake.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// Telemetry defaults
	applyTelemetryDefaults(cfg)
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cfg *Config) {
	cors := &cfg.Server.CORS

	// Set enabled default (true)
	if !cors.Enabled {
		// Check if any CORS fields are set - if so, the operator configured
		// CORS explicitly and the false stands. Otherwise, use default.
		hasAnyConfig := len(cors.AllowedOrigins) > 0 ||
			len(cors.AllowedMethods) > 0 ||
			len(cors.AllowedHeaders) > 0 ||
			len(cors.ExposedHeaders) > 0 ||
			cors.MaxAge > 0

		if !hasAnyConfig {
			cors.Enabled = DefaultCORSEnabled
		}
	}

	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}

	// AllowCredentials defaults to false (zero value), which is correct
}

// applyGitDefaults applies default values to Git template source configuration.
func applyGitDefaults(git *GitTemplateConfig) {
	if git.Branch == "" {
		git.Branch = DefaultGitBranch
	}
	if git.Path == "" {
		git.Path = DefaultGitPath
	}
	if git.Auth.Type == "" {
		git.Auth.Type = "none"
	}

	// Poll.Enabled default (true) - same treatment as CORS enabled.
	// Must run before interval and timeout are filled in.
	if !git.Poll.Enabled {
		hasAnyConfig := git.Poll.Interval > 0 || git.Poll.Timeout > 0
		if !hasAnyConfig {
			git.Poll.Enabled = true
		}
	}
	if git.Poll.Interval == 0 {
		git.Poll.Interval = DefaultGitPollInterval
	}
	if git.Poll.Timeout == 0 {
		git.Poll.Timeout = DefaultGitPollTimeout
	}
	if git.Clone.Depth == 0 {
		git.Clone.Depth = DefaultGitCloneDepth
	}
}

// applyTelemetryDefaults applies default values to telemetry configuration.
func applyTelemetryDefaults(cfg *Config) {
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}

	// Metrics enabled default (true) - if nothing in the section is set,
	// enable by default; an explicit false alongside other fields stands.
	metrics := &cfg.Telemetry.Metrics
	if !metrics.Enabled {
		hasAnyConfig := metrics.Path != "" ||
			metrics.Namespace != "" ||
			metrics.Subsystem != "" ||
			len(metrics.DurationBuckets) > 0

		if !hasAnyConfig {
			metrics.Enabled = DefaultMetricsEnabled
		}
	}
	if metrics.Path == "" {
		metrics.Path = DefaultPrometheusPath
	}
	if metrics.Namespace == "" {
		metrics.Namespace = DefaultMetricsNamespace
	}
	if metrics.Subsystem == "" {
		metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(metrics.DurationBuckets) == 0 {
		metrics.DurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0}
	}

	// Stats enabled defaults to false (zero value), which is correct
	if cfg.Telemetry.Stats.Schedule == "" {
		cfg.Telemetry.Stats.Schedule = DefaultStatsSchedule
	}

	// Health enabled default (true) - same treatment as metrics
	health := &cfg.Telemetry.Health
	if !health.Enabled {
		hasAnyConfig := health.LivenessPath != "" ||
			health.ReadinessPath != "" ||
			health.VersionPath != ""

		if !hasAnyConfig {
			health.Enabled = DefaultHealthEnabled
		}
	}
	if health.LivenessPath == "" {
		health.LivenessPath = DefaultLivenessPath
	}
	if health.ReadinessPath == "" {
		health.ReadinessPath = DefaultReadinessPath
	}
	if health.VersionPath == "" {
		health.VersionPath = DefaultVersionPath
	}

	// Tracing enabled defaults to false (zero value), which is correct
	tracing := &cfg.Telemetry.Tracing
	if tracing.ServiceName == "" {
		tracing.ServiceName = DefaultTracingServiceName
	}
	if tracing.Endpoint == "" {
		tracing.Endpoint = DefaultTracingEndpoint
	}
	if tracing.Sampler == "" {
		tracing.Sampler = DefaultTracingSampler
	}
	if tracing.SampleRatio == 0 {
		tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if tracing.Timeout == 0 {
		tracing.Timeout = DefaultTracingTimeout
	}
}
