package main

import (
	"context"
	"testing"
	"time"

	"bastion-hq/palisade/pkg/allocation"
	"bastion-hq/palisade/pkg/fasttrack"
)

func TestCalculatePercentiles(t *testing.T) {
	latencies := make([]time.Duration, 100)
	for i := range latencies {
		latencies[i] = time.Duration(i+1) * time.Millisecond
	}

	min, mean, median, p95, p99, max := calculatePercentiles(latencies)

	if min != 1*time.Millisecond {
		t.Errorf("min = %v, want 1ms", min)
	}
	if max != 100*time.Millisecond {
		t.Errorf("max = %v, want 100ms", max)
	}
	if mean != 50500*time.Microsecond {
		t.Errorf("mean = %v, want 50.5ms", mean)
	}
	if median != 51*time.Millisecond {
		t.Errorf("median = %v, want 51ms", median)
	}
	if p95 != 96*time.Millisecond {
		t.Errorf("p95 = %v, want 96ms", p95)
	}
	if p99 != 100*time.Millisecond {
		t.Errorf("p99 = %v, want 100ms", p99)
	}
}

func TestCalculatePercentilesEmpty(t *testing.T) {
	min, mean, median, p95, p99, max := calculatePercentiles(nil)
	if min != 0 || mean != 0 || median != 0 || p95 != 0 || p99 != 0 || max != 0 {
		t.Error("calculatePercentiles(nil) should return zero durations")
	}
}

// The rotating mix must exercise every rule in the chain, in chain order.
func TestBenchmarkSelectionsCoverChain(t *testing.T) {
	evaluator := allocation.NewEvaluator()
	chain := allocation.DefaultRuleChain()
	selections := benchmarkSelections()

	if len(selections) != len(chain) {
		t.Fatalf("benchmarkSelections() returned %d selections, want %d", len(selections), len(chain))
	}

	for i, sel := range selections {
		result, err := evaluator.Evaluate(sel)
		if err != nil {
			t.Fatalf("Evaluate(selections[%d]): %v", i, err)
		}
		if result.RuleID != chain[i].ID {
			t.Errorf("selections[%d] matched %s, want %s", i, result.RuleID, chain[i].ID)
		}
	}
}

func TestBenchmarkGateFastTracks(t *testing.T) {
	op, err := benchmarkOp(true)
	if err != nil {
		t.Fatalf("benchmarkOp(true): %v", err)
	}
	if err := op(0); err != nil {
		t.Errorf("fast-track op failed: %v", err)
	}

	gate, fields, err := benchmarkGate()
	if err != nil {
		t.Fatalf("benchmarkGate: %v", err)
	}
	decision, err := gate.Route(
		allocation.ClassificationSelection{SystemScope: allocation.ScopeInternal},
		fields,
		fasttrack.Flags{FastTrackEnabled: true},
	)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !decision.FastTracked {
		t.Error("benchmark submission was not fast-tracked")
	}
	if decision.ControlCount != allocation.ControlCountMinimum {
		t.Errorf("ControlCount = %d, want %d", decision.ControlCount, allocation.ControlCountMinimum)
	}
}

func TestRunAllocationLoad(t *testing.T) {
	op, err := benchmarkOp(false)
	if err != nil {
		t.Fatalf("benchmarkOp(false): %v", err)
	}

	results := runAllocationLoad(context.Background(), op, 70, 2)

	if results.completed != 70 {
		t.Errorf("completed = %d, want 70", results.completed)
	}
	if results.failed != 0 {
		t.Errorf("failed = %d, want 0", results.failed)
	}
	if len(results.latencies) != 70 {
		t.Errorf("recorded %d latencies, want 70", len(results.latencies))
	}
	if results.duration <= 0 {
		t.Error("duration should be positive")
	}
}

func TestRunAllocationLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op, err := benchmarkOp(false)
	if err != nil {
		t.Fatalf("benchmarkOp(false): %v", err)
	}

	results := runAllocationLoad(ctx, op, 1000000, 2)
	if results.completed+results.failed >= 1000000 {
		t.Error("cancelled run should stop early")
	}
}
