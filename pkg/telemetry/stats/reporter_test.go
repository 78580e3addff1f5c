package stats

import (
	"context"
	"testing"
	"time"

	"bastion-hq/palisade/pkg/config"
)

func TestReporter_Start(t *testing.T) {
	tests := []struct {
		name        string
		enabled     bool
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "valid hourly schedule",
			enabled:     true,
			schedule:    "0 * * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "valid daily schedule",
			enabled:     true,
			schedule:    "0 8 * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "empty schedule - no error, not running",
			enabled:     true,
			schedule:    "",
			wantRunning: false,
			wantError:   false,
		},
		{
			name:        "disabled - no error, not running",
			enabled:     false,
			schedule:    "0 * * * *",
			wantRunning: false,
			wantError:   false,
		},
		{
			name:        "invalid schedule",
			enabled:     true,
			schedule:    "not a cron expression",
			wantRunning: false,
			wantError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := NewReporter(&config.StatsConfig{
				Enabled:  tt.enabled,
				Schedule: tt.schedule,
			}, nil)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := reporter.Start(ctx)

			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}

			if reporter.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", reporter.IsRunning(), tt.wantRunning)
			}

			if tt.wantRunning {
				next := reporter.NextReport()
				if next == nil {
					t.Error("NextReport() returned nil for running reporter")
				}
			}

			reporter.Stop()

			if reporter.IsRunning() {
				t.Error("reporter still running after Stop()")
			}
		})
	}
}

func TestReporter_RecordAndSnapshot(t *testing.T) {
	reporter := NewReporter(&config.StatsConfig{Enabled: true}, nil)

	reporter.RecordDecision("cui-override", "DFARS", false)
	reporter.RecordDecision("cui-override", "DFARS", false)
	reporter.RecordDecision("fast-track-baseline", "A", true)
	reporter.RecordDecision("public-data", "B", false)
	reporter.RecordInvalid()

	snap := reporter.Snapshot()

	if snap.Total != 4 {
		t.Errorf("Total = %d, want 4", snap.Total)
	}
	if snap.ByLOELevel["DFARS"] != 2 {
		t.Errorf("ByLOELevel[DFARS] = %d, want 2", snap.ByLOELevel["DFARS"])
	}
	if snap.ByLOELevel["A"] != 1 {
		t.Errorf("ByLOELevel[A] = %d, want 1", snap.ByLOELevel["A"])
	}
	if snap.ByRule["cui-override"] != 2 {
		t.Errorf("ByRule[cui-override] = %d, want 2", snap.ByRule["cui-override"])
	}
	if snap.FastTracked != 1 {
		t.Errorf("FastTracked = %d, want 1", snap.FastTracked)
	}
	if snap.Invalid != 1 {
		t.Errorf("Invalid = %d, want 1", snap.Invalid)
	}
	if snap.WindowStart.IsZero() {
		t.Error("WindowStart should be set")
	}
}

func TestReporter_SnapshotIsACopy(t *testing.T) {
	reporter := NewReporter(&config.StatsConfig{Enabled: true}, nil)

	reporter.RecordDecision("public-data", "B", false)

	snap := reporter.Snapshot()
	snap.ByLOELevel["B"] = 99
	snap.ByRule["public-data"] = 99

	fresh := reporter.Snapshot()
	if fresh.ByLOELevel["B"] != 1 {
		t.Errorf("internal level counter mutated through snapshot: %d", fresh.ByLOELevel["B"])
	}
	if fresh.ByRule["public-data"] != 1 {
		t.Errorf("internal rule counter mutated through snapshot: %d", fresh.ByRule["public-data"])
	}
}

func TestReporter_ReportResetsWindow(t *testing.T) {
	reporter := NewReporter(&config.StatsConfig{Enabled: true}, nil)

	reporter.RecordDecision("default-minimum", "A", false)
	reporter.RecordInvalid()

	before := reporter.Snapshot()
	if before.Total != 1 || before.Invalid != 1 {
		t.Fatalf("unexpected pre-report counts: total=%d invalid=%d", before.Total, before.Invalid)
	}

	reporter.report()

	after := reporter.Snapshot()
	if after.Total != 0 {
		t.Errorf("Total after report = %d, want 0", after.Total)
	}
	if after.Invalid != 0 {
		t.Errorf("Invalid after report = %d, want 0", after.Invalid)
	}
	if len(after.ByLOELevel) != 0 {
		t.Errorf("ByLOELevel after report = %v, want empty", after.ByLOELevel)
	}
	if !after.WindowStart.After(before.WindowStart) && !after.WindowStart.Equal(before.WindowStart) {
		t.Error("WindowStart should move forward at report")
	}
}

func TestReporter_GracefulShutdown(t *testing.T) {
	reporter := NewReporter(&config.StatsConfig{
		Enabled:  true,
		Schedule: "0 8 * * *",
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	if err := reporter.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	cancel()

	time.Sleep(100 * time.Millisecond)

	if reporter.IsRunning() {
		t.Error("reporter still running after context cancelled")
	}
}

func TestReporter_NextReport(t *testing.T) {
	reporter := NewReporter(&config.StatsConfig{
		Enabled:  true,
		Schedule: "0 8 * * *",
	}, nil)

	if next := reporter.NextReport(); next != nil {
		t.Errorf("NextReport() before start = %v, want nil", next)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reporter.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer reporter.Stop()

	next := reporter.NextReport()
	if next == nil {
		t.Fatal("NextReport() after start returned nil")
	}

	if !next.After(time.Now()) {
		t.Errorf("NextReport() = %v, want time in future", next)
	}
}

func TestReporter_MultipleStartStop(t *testing.T) {
	reporter := NewReporter(&config.StatsConfig{
		Enabled:  true,
		Schedule: "0 * * * *",
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := reporter.Start(ctx); err != nil {
			t.Fatalf("Start() iteration %d failed: %v", i, err)
		}

		if !reporter.IsRunning() {
			t.Errorf("IsRunning() = false after Start() iteration %d", i)
		}

		reporter.Stop()

		if reporter.IsRunning() {
			t.Errorf("IsRunning() = true after Stop() iteration %d", i)
		}

		time.Sleep(50 * time.Millisecond)
	}
}
