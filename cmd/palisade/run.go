package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"bastion-hq/palisade/pkg/allocation"
	"bastion-hq/palisade/pkg/cli"
	"bastion-hq/palisade/pkg/config"
	"bastion-hq/palisade/pkg/fasttrack"
	"bastion-hq/palisade/pkg/fasttrack/source"
	"bastion-hq/palisade/pkg/server"
	"bastion-hq/palisade/pkg/telemetry/logging"
	"bastion-hq/palisade/pkg/telemetry/metrics"
	"bastion-hq/palisade/pkg/telemetry/stats"
	"bastion-hq/palisade/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	fastTrack     bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Palisade intake server",
	Long: `Start the Palisade intake server with the specified configuration.

The server accepts classification submissions on the configured address and
returns control allocation decisions from the rule chain, or from the intake
template when fast-track routing applies.

Examples:
  # Start with default config
  palisade run

  # Start with custom config
  palisade run --config /etc/palisade/config.yaml

  # Override listen address
  palisade run --listen 0.0.0.0:8443

  # Force fast-track routing off for this process
  palisade run --fast-track=false

  # Validate config without starting server
  palisade run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.fastTrack, "fast-track", false, "override fast-track routing")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if cmd.Flags().Changed("fast-track") {
		cfg.Gate.FastTrackEnabled = runFlags.fastTrack
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	// Initialize logging based on config
	logger, err := logging.New(logging.Config{
		Level:        cfg.Telemetry.Logging.Level,
		Format:       cfg.Telemetry.Logging.Format,
		AddSource:    cfg.Telemetry.Logging.AddSource,
		RedactFields: cfg.Telemetry.Logging.RedactFields,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	log := logger.Slog()
	slog.SetDefault(log)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	// Print startup banner
	printBanner(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build the rule chain and the routing gate
	evaluator := allocation.NewEvaluator()
	gate, err := fasttrack.NewGate(evaluator, log)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Printf("✓ Rule chain loaded (%d rules)\n", evaluator.Len())

	// Metrics collector (owns the Prometheus registry)
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	// Intake template source (only needed when fast-track routing is on)
	if cfg.Gate.FastTrackEnabled {
		slog.Info("initializing intake template source",
			"mode", cfg.Gate.Template.Mode,
		)

		tplSource, err := source.New(&cfg.Gate.Template, log)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to create template source: %w", err))
		}
		defer tplSource.Close()

		tpl, err := tplSource.Load(ctx)
		if err != nil {
			slog.Warn("intake template unavailable, submissions take the full rule chain until a reload succeeds",
				"error", err)
		} else if err := gate.SetTemplate(tpl); err != nil {
			slog.Warn("intake template rejected", "error", err)
		} else {
			fmt.Printf("✓ Intake template %q loaded (version %s)\n", tpl.Name, tpl.Version)
		}

		reload := func() error {
			tpl, err := tplSource.Load(ctx)
			if err == nil {
				err = gate.SetTemplate(tpl)
			}
			if err != nil {
				if collector != nil {
					collector.RecordTemplateReload(metrics.ReloadFailure)
				}
				slog.Error("template reload failed, keeping previous template", "error", err)
				return err
			}
			if collector != nil {
				collector.RecordTemplateReload(metrics.ReloadSuccess)
			}
			slog.Info("intake template reloaded",
				"name", tpl.Name,
				"version", tpl.Version,
			)
			return nil
		}

		// Git sources always poll; file sources watch only when asked to.
		if cfg.Gate.Template.Mode == "git" || cfg.Gate.Template.Watch {
			go func() {
				if err := tplSource.Watch(ctx, reload); err != nil && ctx.Err() == nil {
					slog.Error("template watch stopped", "error", err)
				}
			}()
		}
	}

	// Scheduled stats reporter
	var reporter *stats.Reporter
	if cfg.Telemetry.Stats.Enabled {
		reporter = stats.NewReporter(&cfg.Telemetry.Stats, log)
		if err := reporter.Start(ctx); err != nil {
			slog.Warn("failed to start stats reporter", "error", err)
		} else {
			defer reporter.Stop()
			if next := reporter.NextReport(); next != nil {
				slog.Debug("stats reporter started", "next_report", next)
			}
			fmt.Printf("✓ Stats reporter scheduled (%s)\n", cfg.Telemetry.Stats.Schedule)
		}
	}

	// Distributed tracing (noop when disabled)
	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown failed", "error", err)
		}
	}()
	if tracer.Enabled() {
		fmt.Printf("✓ Tracing enabled (endpoint %s)\n", cfg.Telemetry.Tracing.Endpoint)
	}

	// Create HTTP server
	slog.Info("creating intake server")
	srv, err := server.New(server.Options{
		Config:  cfg,
		Gate:    gate,
		Rules:   evaluator,
		Metrics: collector,
		Stats:   reporter,
		Tracer:  tracer,
		Logger:  log,
		Version: server.VersionInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		},
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	scheme := "http"
	if cfg.Server.TLS.Enabled {
		scheme = "https"
	}
	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: %s://%s%s\n", scheme, cfg.Server.ListenAddress, cfg.Telemetry.Health.LivenessPath)
	if collector != nil {
		fmt.Printf("✓ Metrics endpoint: %s://%s%s\n", scheme, cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a signal, context cancellation, or server error.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Palisade v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	if cfg.Gate.FastTrackEnabled {
		slog.Debug("fast-track routing enabled",
			"template_mode", cfg.Gate.Template.Mode,
		)
	} else {
		slog.Debug("fast-track routing disabled, all submissions take the rule chain")
	}

	if cfg.Telemetry.Metrics.Enabled {
		slog.Debug("metrics enabled", "path", cfg.Telemetry.Metrics.Path)
	}
	if cfg.Telemetry.Stats.Enabled {
		slog.Debug("stats reporting enabled", "schedule", cfg.Telemetry.Stats.Schedule)
	}
}
