package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bastion-hq/palisade/pkg/config"

	"github.com/robfig/cron/v3"
)

// Snapshot is a point-in-time view of the current reporting window.
type Snapshot struct {
	// Total is the number of decisions in the window.
	Total uint64 `json:"total"`

	// ByLOELevel counts decisions per resulting level of effort.
	ByLOELevel map[string]uint64 `json:"by_loe_level"`

	// ByRule counts decisions per matched rule.
	ByRule map[string]uint64 `json:"by_rule"`

	// FastTracked is the number of decisions served from the gate baseline.
	FastTracked uint64 `json:"fast_tracked"`

	// Invalid is the number of submissions rejected before evaluation.
	Invalid uint64 `json:"invalid"`

	// WindowStart is when the current window opened.
	WindowStart time.Time `json:"window_start"`
}

// Reporter accumulates allocation counters in memory and logs a summary on
// a cron schedule. Counters reset at each report, so every summary covers
// one window. Reporting is purely log-based; Prometheus carries the
// scrapeable series.
type Reporter struct {
	cfg    *config.StatsConfig
	logger *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool

	countersMu  sync.Mutex
	total       uint64
	byLevel     map[string]uint64
	byRule      map[string]uint64
	fastTracked uint64
	invalid     uint64
	windowStart time.Time
}

// NewReporter creates a stats reporter. A nil logger falls back to
// slog.Default.
func NewReporter(cfg *config.StatsConfig, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Reporter{
		cfg:         cfg,
		logger:      logger.With("component", "stats.reporter"),
		byLevel:     make(map[string]uint64),
		byRule:      make(map[string]uint64),
		windowStart: time.Now(),
	}
}

// RecordDecision counts one allocation decision.
func (r *Reporter) RecordDecision(ruleID, loeLevel string, fastTracked bool) {
	r.countersMu.Lock()
	defer r.countersMu.Unlock()

	r.total++
	r.byLevel[loeLevel]++
	r.byRule[ruleID]++
	if fastTracked {
		r.fastTracked++
	}
}

// RecordInvalid counts one submission rejected before evaluation.
func (r *Reporter) RecordInvalid() {
	r.countersMu.Lock()
	defer r.countersMu.Unlock()

	r.invalid++
}

// Snapshot returns a copy of the current window without resetting it.
func (r *Reporter) Snapshot() Snapshot {
	r.countersMu.Lock()
	defer r.countersMu.Unlock()

	return Snapshot{
		Total:       r.total,
		ByLOELevel:  copyCounts(r.byLevel),
		ByRule:      copyCounts(r.byRule),
		FastTracked: r.fastTracked,
		Invalid:     r.invalid,
		WindowStart: r.windowStart,
	}
}

// Start begins scheduled reporting based on the configured cron expression.
//
// Common expressions:
//   - "0 * * * *"   - hourly on the hour
//   - "0 8 * * *"   - daily at 8 AM
//   - "0 8 * * 1"   - Mondays at 8 AM
//
// Disabled stats or an empty schedule leave the reporter idle without error.
func (r *Reporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.cfg.Enabled || r.cfg.Schedule == "" {
		r.logger.Info("stats reporting not configured, skipping reporter")
		return nil
	}

	if _, err := cron.ParseStandard(r.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid stats schedule %q: %w", r.cfg.Schedule, err)
	}

	// Fresh cron per start so restarting never stacks duplicate entries
	c := cron.New()
	if _, err := c.AddFunc(r.cfg.Schedule, r.report); err != nil {
		return fmt.Errorf("failed to schedule stats reporting: %w", err)
	}

	c.Start()
	r.cron = c
	r.running = true

	r.logger.Info("stats reporter started",
		"schedule", r.cfg.Schedule,
	)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// report logs the window summary and opens a new window.
func (r *Reporter) report() {
	snap := r.rotate()

	if snap.Total == 0 && snap.Invalid == 0 {
		r.logger.Debug("no allocation activity in reporting window",
			"window_start", snap.WindowStart,
		)
		return
	}

	r.logger.Info("allocation summary",
		"window_start", snap.WindowStart,
		"total", snap.Total,
		"by_loe_level", snap.ByLOELevel,
		"by_rule", snap.ByRule,
		"fast_tracked", snap.FastTracked,
		"invalid", snap.Invalid,
	)
}

// rotate snapshots the current window and resets the counters.
func (r *Reporter) rotate() Snapshot {
	r.countersMu.Lock()
	defer r.countersMu.Unlock()

	snap := Snapshot{
		Total:       r.total,
		ByLOELevel:  r.byLevel,
		ByRule:      r.byRule,
		FastTracked: r.fastTracked,
		Invalid:     r.invalid,
		WindowStart: r.windowStart,
	}

	r.total = 0
	r.byLevel = make(map[string]uint64)
	r.byRule = make(map[string]uint64)
	r.fastTracked = 0
	r.invalid = 0
	r.windowStart = time.Now()

	return snap
}

// Stop halts scheduled reporting and waits for a running report to finish.
func (r *Reporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil && r.running {
		ctx := r.cron.Stop()
		<-ctx.Done()
		r.running = false
		r.logger.Info("stats reporter stopped")
	}
}

// IsRunning reports whether scheduled reporting is active.
func (r *Reporter) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.running
}

// NextReport returns when the next summary will be logged, or nil when the
// reporter is idle.
func (r *Reporter) NextReport() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron == nil || !r.running {
		return nil
	}

	entries := r.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
