package config

import "time"

// Config is the root configuration structure for Bastion Palisade.
// It contains all configuration sections for the intake server, the
// fast-track gate, and telemetry settings.
type Config struct {
	// Server contains HTTP intake server configuration including listen
	// address, timeouts, CORS, and TLS settings.
	Server ServerConfig `yaml:"server"`

	// Gate contains configuration for the fast-track gate including the
	// feature flag and the intake template source.
	Gate GateConfig `yaml:"gate"`

	// Intake contains configuration for request handling including the
	// per-request timeout and body size limit.
	Intake IntakeConfig `yaml:"intake"`

	// Telemetry contains configuration for observability including logging,
	// metrics, scheduled stats reporting, and health endpoints.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP intake server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. A zero or negative value means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If IdleTimeout is zero, ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values, including the
	// request line. It does not limit the size of the request body.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// TLS contains TLS configuration for the intake server.
	TLS TLSConfig `yaml:"tls"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Use ["*"] to allow all origins (not recommended for production).
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials (cookies, auth headers)
	// are allowed in CORS requests.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// TLSConfig contains TLS configuration.
type TLSConfig struct {
	// Enabled controls whether TLS is enabled for the intake server.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the TLS certificate file.
	// Required when Enabled is true.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the TLS private key file.
	// Required when Enabled is true.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept.
	// Options: "1.2", "1.3"
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate files are checked for
	// changes, so renewed certificates are picked up without a restart.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"cert_reload_interval"`
}

// GateConfig contains configuration for the fast-track gate.
type GateConfig struct {
	// FastTrackEnabled opts this deployment into template-baseline routing.
	// The flag is read once at startup; changing it requires a restart.
	// Default: false
	FastTrackEnabled bool `yaml:"fast_track_enabled"`

	// Template configures where the intake template is loaded from.
	Template TemplateSourceConfig `yaml:"template"`
}

// TemplateSourceConfig configures the intake template source.
type TemplateSourceConfig struct {
	// Mode specifies how the template is loaded.
	// Options: "file" (local file), "git" (Git repository)
	// Default: "file"
	Mode string `yaml:"mode"`

	// FilePath is the path to the template file when Mode is "file".
	// Default: "./template.yaml"
	FilePath string `yaml:"file_path"`

	// Watch enables automatic reloading when the template file changes.
	// Only used when Mode is "file"; Git mode always polls.
	// Default: false
	Watch bool `yaml:"watch"`

	// Git contains Git repository configuration.
	// Used when Mode is "git".
	Git GitTemplateConfig `yaml:"git"`
}

// GitTemplateConfig configures Git-based template loading.
type GitTemplateConfig struct {
	// Repository URL (HTTPS or SSH).
	// Example: "https://github.com/company/intake-templates.git"
	// Example: "git@github.com:company/intake-templates.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Example: "main", "dev"
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within repository to the template file.
	// Example: "templates/standard.yaml"
	// Default: "template.yaml"
	Path string `yaml:"path"`

	// Auth configures Git authentication.
	Auth GitAuthConfig `yaml:"auth"`

	// Poll configures change detection.
	Poll GitPollConfig `yaml:"poll"`

	// Clone configures repository cloning.
	Clone GitCloneConfig `yaml:"clone"`
}

// GitAuthConfig configures Git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh", "none"
	// - "token": HTTPS with personal access token
	// - "ssh": SSH with public key
	// - "none": public repositories
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication.
	// Example: "${GITHUB_TOKEN}"
	// Required when Type is "token".
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	// Example: "/home/user/.ssh/id_rsa"
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys.
	// Optional, leave empty if key is not encrypted.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// GitPollConfig configures change detection.
type GitPollConfig struct {
	// Enabled determines if polling is active.
	// When false, the template is loaded once at startup.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Interval between polls (e.g., "30s", "1m", "5m").
	// Lower values = faster change detection but more load.
	// Default: 30s
	Interval time.Duration `yaml:"interval"`

	// Timeout for Git operations.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// GitCloneConfig configures repository cloning.
type GitCloneConfig struct {
	// Depth for shallow clones (0 = full clone).
	// Shallow clones are faster but don't include full history; rollback
	// and history commands need a depth large enough to reach the target.
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath where repository is cloned.
	// Example: "/var/lib/palisade/templates"
	// Default: system temp directory
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes local repo before cloning.
	// Useful for ensuring clean state on restart.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// IntakeConfig contains configuration for request handling.
type IntakeConfig struct {
	// RequestTimeout is the maximum duration for handling a single request.
	// Requests exceeding this return 504 Gateway Timeout.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxBodyBytes limits the size of accepted request bodies.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Stats contains scheduled stats reporting configuration.
	Stats StatsConfig `yaml:"stats"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactFields lists submission field IDs whose values are masked in
	// logs. Credentials and bearer tokens are always masked.
	RedactFields []string `yaml:"redact_fields"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "bastion"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "palisade"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for request and evaluation
	// durations (seconds).
	// Default: [0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// StatsConfig contains scheduled stats reporting configuration.
type StatsConfig struct {
	// Enabled controls whether the scheduled stats reporter is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression for when summaries are logged.
	// Default: "0 * * * *" (hourly)
	Schedule string `yaml:"schedule"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`
}

// TracingConfig contains distributed tracing configuration. Spans are
// exported over OTLP gRPC; point Endpoint at a collector that forwards to
// the tracing backend.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName identifies this service in the tracing backend.
	// Default: "palisade"
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP gRPC collector endpoint (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS on the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Sampler selects the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces sampled under the "ratio"
	// strategy, between 0.0 and 1.0. Use sampler "never" rather than a
	// zero ratio to disable sampling.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Timeout bounds each span export batch.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
