package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"bastion-hq/palisade/pkg/config"
	"bastion-hq/palisade/pkg/fasttrack"
	"bastion-hq/palisade/pkg/intake/handlers"
	"bastion-hq/palisade/pkg/intake/middleware"
	securitytls "bastion-hq/palisade/pkg/security/tls"
	"bastion-hq/palisade/pkg/telemetry/health"
	"bastion-hq/palisade/pkg/telemetry/metrics"
	"bastion-hq/palisade/pkg/telemetry/stats"
	"bastion-hq/palisade/pkg/telemetry/tracing"
)

// VersionInfo carries build identification surfaced on /version.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Options collects the server's dependencies. Config and Gate are
// required; telemetry fields may be nil and the matching endpoints or
// signals are simply absent.
type Options struct {
	// Config is the full service configuration.
	Config *config.Config

	// Gate routes allocation submissions.
	Gate *fasttrack.Gate

	// Rules lists the evaluation chain for the introspection endpoint.
	Rules handlers.RuleLister

	// Metrics owns the Prometheus registry and the /metrics handler.
	Metrics *metrics.Collector

	// Stats receives decision tallies.
	Stats *stats.Reporter

	// Tracer instruments submissions with spans.
	Tracer *tracing.Tracer

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Version is the build identification for /version.
	Version VersionInfo
}

// Server is the HTTP intake server for allocation submissions.
type Server struct {
	config       *config.Config
	gate         *fasttrack.Gate
	metrics      *metrics.Collector
	tracer       *tracing.Tracer
	logger       *slog.Logger
	version      VersionInfo
	checker      *health.Checker
	allocHandler *handlers.AllocateHandler
	rulesHandler *handlers.RulesHandler
	httpServer   *http.Server
	certReloader *securitytls.CertificateReloader
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	requestOnce  sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates an intake server and wires its handlers and health checks.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Gate == nil {
		return nil, fmt.Errorf("gate is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	flags := fasttrack.Flags{FastTrackEnabled: opts.Config.Gate.FastTrackEnabled}

	allocHandler, err := handlers.NewAllocateHandler(handlers.AllocateOptions{
		Gate:         opts.Gate,
		Flags:        flags,
		Metrics:      opts.Metrics,
		Stats:        opts.Stats,
		Tracer:       opts.Tracer,
		Logger:       logger,
		MaxBodyBytes: opts.Config.Intake.MaxBodyBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build allocation handler: %w", err)
	}

	var rulesHandler *handlers.RulesHandler
	if opts.Rules != nil {
		rulesHandler = handlers.NewRulesHandler(opts.Rules, logger)
	}

	s := &Server{
		config:       opts.Config,
		gate:         opts.Gate,
		metrics:      opts.Metrics,
		tracer:       opts.Tracer,
		logger:       logger,
		version:      opts.Version,
		checker:      health.New(0),
		allocHandler: allocHandler,
		rulesHandler: rulesHandler,
		shutdownChan: make(chan struct{}),
	}
	s.registerHealthChecks(flags)

	return s, nil
}

// registerHealthChecks wires the readiness components. The template check
// only gates readiness when the deployment expects the fast-track path.
func (s *Server) registerHealthChecks(flags fasttrack.Flags) {
	s.checker.RegisterCheck("config", func(ctx context.Context) error {
		if s.config == nil {
			return fmt.Errorf("configuration not loaded")
		}
		return nil
	})

	s.checker.RegisterCheck("template", func(ctx context.Context) error {
		if flags.FastTrackEnabled && !s.gate.HasTemplate() {
			return fmt.Errorf("fast track enabled but no intake template installed")
		}
		return nil
	})
}

// Checker returns the health checker so callers can register additional
// component checks before Start.
func (s *Server) Checker() *health.Checker {
	return s.checker
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	if s.config.Server.TLS.Enabled {
		tlsConfig, err := s.configureTLS()
		if err != nil {
			s.setRunning(false)
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig

		// The reloader owns the key pair; serving starts only once the
		// initial load validates.
		if err := s.certReloader.Start(ctx); err != nil {
			s.setRunning(false)
			return fmt.Errorf("failed to load TLS certificate: %w", err)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting intake server",
			"address", s.config.Server.ListenAddress,
			"tls_enabled", s.config.Server.TLS.Enabled,
			"fast_track_enabled", s.config.Gate.FastTrackEnabled,
		)

		var err error
		if s.config.Server.TLS.Enabled {
			// Certificates come from the reloader via GetCertificate.
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("intake server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/v1/allocations", s.allocHandler)
	if s.rulesHandler != nil {
		mux.Handle("/api/v1/rules", s.rulesHandler)
	}

	if s.config.Telemetry.Health.Enabled {
		health.Mount(mux, &s.config.Telemetry.Health, s.checker,
			s.version.Version, s.version.Commit, s.version.BuildTime)
	}

	if s.metrics != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}

	// Apply middleware chain, innermost first.
	var handler http.Handler = mux

	handler = middleware.TimeoutMiddleware(s.config.Intake.RequestTimeout, s.logger)(handler)

	corsConfig := s.convertCORSConfig()
	handler = middleware.CORSMiddleware(corsConfig)(handler)

	if s.tracer != nil && s.tracer.Enabled() {
		handler = tracing.HTTPMiddleware(handler)
	}

	handler = middleware.RequestIDMiddleware(handler)

	if s.metrics != nil {
		handler = middleware.MetricsMiddleware(s.metrics, mux)(handler)
	}

	handler = middleware.LoggingMiddleware(s.logger)(handler)

	// Recovery outermost so panics anywhere in the chain become 500s.
	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	return handler
}

// configureTLS configures TLS settings. The returned config serves
// certificates through a reloader so renewals are picked up without a
// restart; the initial load happens when Start calls the reloader.
func (s *Server) configureTLS() (*tls.Config, error) {
	tlsCfg := s.config.Server.TLS

	if tlsCfg.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if tlsCfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}

	if _, err := os.Stat(tlsCfg.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", tlsCfg.CertFile)
	}
	if _, err := os.Stat(tlsCfg.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", tlsCfg.KeyFile)
	}

	minVersion := uint16(tls.VersionTLS13)
	if tlsCfg.MinVersion == "1.2" {
		minVersion = tls.VersionTLS12
	}

	s.certReloader = securitytls.NewCertificateReloader(
		tlsCfg.CertFile,
		tlsCfg.KeyFile,
		tlsCfg.ReloadInterval,
		s.logger,
	)

	tlsConfig := &tls.Config{
		MinVersion:     minVersion,
		GetCertificate: s.certReloader.GetCertificateFunc(),
	}

	return tlsConfig, nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Server) setRunning(running bool) {
	s.mu.Lock()
	s.isRunning = running
	s.mu.Unlock()
}

// Handler returns the configured HTTP handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// RequestShutdown asks a blocked Start to shut the server down. It does
// not wait for the shutdown to complete.
func (s *Server) RequestShutdown() {
	s.requestOnce.Do(func() {
		close(s.shutdownChan)
	})
}

// convertCORSConfig converts config.CORSConfig to middleware.CORSConfig.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	return &middleware.CORSConfig{
		Enabled:          s.config.Server.CORS.Enabled,
		AllowedOrigins:   s.config.Server.CORS.AllowedOrigins,
		AllowedMethods:   s.config.Server.CORS.AllowedMethods,
		AllowedHeaders:   s.config.Server.CORS.AllowedHeaders,
		ExposedHeaders:   s.config.Server.CORS.ExposedHeaders,
		MaxAge:           s.config.Server.CORS.MaxAge,
		AllowCredentials: s.config.Server.CORS.AllowCredentials,
	}
}
