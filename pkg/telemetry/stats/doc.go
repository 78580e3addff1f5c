// Package stats provides scheduled allocation summary reporting.
//
// The Reporter accumulates decision counters in memory and logs one summary
// line per reporting window, driven by a standard cron expression from
// StatsConfig. Counters reset at each report. Summaries complement the
// Prometheus metrics: they give operators a periodic digest in the log
// stream without a scrape pipeline.
//
// Usage:
//
//	reporter := stats.NewReporter(&cfg.Telemetry.Stats, logger.Slog())
//	if err := reporter.Start(ctx); err != nil {
//	    return err
//	}
//	defer reporter.Stop()
//
//	reporter.RecordDecision("cui-override", "DFARS", false)
package stats
