package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"bastion-hq/palisade/pkg/allocation"
	"bastion-hq/palisade/pkg/cli"
	"bastion-hq/palisade/pkg/fasttrack"
)

var benchmarkFlags struct {
	iterations  int
	concurrency int
	fastTrack   bool
	format      string
}

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Benchmark the allocation engine",
	Long: `Benchmark the allocation engine in-process.

The benchmark evaluates a rotating mix of classification selections, one per
rule in the chain, and reports throughput and latency percentiles. With
--fast-track, complete submissions are routed through the gate instead, so
the measured path is the template baseline rather than the rule chain.

No server is required; this measures the engine itself.

Metrics Collected:
  - Throughput (operations/sec)
  - Latency percentiles (p50, p95, p99, max)
  - Failure count

Examples:
  # Default run
  palisade benchmark

  # Heavier run across 8 goroutines
  palisade benchmark --iterations 1000000 --concurrency 8

  # Measure the fast-track path
  palisade benchmark --fast-track

  # Machine-readable output
  palisade benchmark --format json`,
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	benchmarkCmd.Flags().IntVar(&benchmarkFlags.iterations, "iterations", 100000, "total operations to run")
	benchmarkCmd.Flags().IntVar(&benchmarkFlags.concurrency, "concurrency", 4, "concurrent workers")
	benchmarkCmd.Flags().BoolVar(&benchmarkFlags.fastTrack, "fast-track", false, "measure the gate's fast-track path instead of the rule chain")
	benchmarkCmd.Flags().StringVarP(&benchmarkFlags.format, "format", "f", "text", "output format (text, json)")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(benchmarkFlags.format)
	if err != nil {
		return err
	}
	if benchmarkFlags.iterations <= 0 {
		return fmt.Errorf("--iterations must be positive")
	}
	if benchmarkFlags.concurrency <= 0 {
		return fmt.Errorf("--concurrency must be positive")
	}

	op, err := benchmarkOp(benchmarkFlags.fastTrack)
	if err != nil {
		return cli.NewCommandError("benchmark", err)
	}

	if format == cli.FormatText {
		fmt.Println("Palisade Benchmark")
		fmt.Println("==================")
		fmt.Printf("Iterations:  %d\n", benchmarkFlags.iterations)
		fmt.Printf("Concurrency: %d\n", benchmarkFlags.concurrency)
		fmt.Printf("Path:        %s\n", benchmarkPath(benchmarkFlags.fastTrack))
		fmt.Println()
	}

	// Ctrl+C stops the run and reports what completed.
	ctx := cli.SetupSignalHandler()

	results := runAllocationLoad(ctx, op, benchmarkFlags.iterations, benchmarkFlags.concurrency)

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, results.summary())
	}

	displayResults(results)
	return nil
}

func benchmarkPath(fastTrack bool) string {
	if fastTrack {
		return "fast-track gate"
	}
	return "rule chain"
}

// benchmarkOp returns the operation under measurement. The index selects a
// submission from the rotating mix.
func benchmarkOp(fastTrack bool) (func(i int) error, error) {
	selections := benchmarkSelections()

	if !fastTrack {
		evaluator := allocation.NewEvaluator()
		return func(i int) error {
			_, err := evaluator.Evaluate(selections[i%len(selections)])
			return err
		}, nil
	}

	gate, fields, err := benchmarkGate()
	if err != nil {
		return nil, err
	}
	flags := fasttrack.Flags{FastTrackEnabled: true}
	// A complete, unrestricted submission keeps every operation on the
	// fast-track path.
	sel := allocation.ClassificationSelection{SystemScope: allocation.ScopeInternal}
	return func(int) error {
		_, err := gate.Route(sel, fields, flags)
		return err
	}, nil
}

// benchmarkSelections covers every rule in the chain, in chain order.
func benchmarkSelections() []allocation.ClassificationSelection {
	return []allocation.ClassificationSelection{
		{CUI: true},
		{ITAR: true, SystemScope: allocation.ScopeExternal},
		{PublicData: true},
		{PilotShortDuration: true},
		{Proprietary: true, SystemScope: allocation.ScopeInternal},
		{PII: true, SystemScope: allocation.ScopeExternal},
		{},
	}
}

func benchmarkGate() (*fasttrack.Gate, map[string]string, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate, err := fasttrack.NewGate(allocation.NewEvaluator(), logger)
	if err != nil {
		return nil, nil, err
	}

	ids := []string{
		"system-name", "system-owner", "business-unit", "hosting-environment",
		"data-description", "user-population", "go-live-date", "decommission-date",
	}
	tpl := &fasttrack.Template{Name: "benchmark", Version: "bench"}
	fields := make(map[string]string, len(ids))
	for _, id := range ids {
		tpl.RequiredFields = append(tpl.RequiredFields, fasttrack.TemplateField{ID: id, Label: id})
		fields[id] = "benchmark"
	}
	if err := gate.SetTemplate(tpl); err != nil {
		return nil, nil, err
	}
	return gate, fields, nil
}

type benchmarkResults struct {
	iterations  int
	concurrency int
	fastTrack   bool
	completed   int
	failed      int
	duration    time.Duration
	latencies   []time.Duration
}

func runAllocationLoad(ctx context.Context, op func(int) error, iterations, concurrency int) *benchmarkResults {
	var (
		next      atomic.Int64
		completed atomic.Int64
		failed    atomic.Int64
	)

	workerLatencies := make([][]time.Duration, concurrency)

	progress := cli.NewProgressReporter(nil)
	progress.Start(int64(iterations))

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			latencies := make([]time.Duration, 0, iterations/concurrency+1)
			for ctx.Err() == nil {
				i := next.Add(1) - 1
				if i >= int64(iterations) {
					break
				}

				opStart := time.Now()
				err := op(int(i))
				latencies = append(latencies, time.Since(opStart))

				if err != nil {
					failed.Add(1)
				} else {
					completed.Add(1)
				}

				if done := completed.Load() + failed.Load(); done%4096 == 0 {
					progress.Update(done)
				}
			}
			workerLatencies[w] = latencies
		}(w)
	}
	wg.Wait()
	progress.Finish()

	results := &benchmarkResults{
		iterations:  iterations,
		concurrency: concurrency,
		fastTrack:   benchmarkFlags.fastTrack,
		completed:   int(completed.Load()),
		failed:      int(failed.Load()),
		duration:    time.Since(start),
	}
	for _, latencies := range workerLatencies {
		results.latencies = append(results.latencies, latencies...)
	}
	return results
}

func displayResults(results *benchmarkResults) {
	fmt.Println()
	fmt.Println("Results:")
	fmt.Println("--------")
	fmt.Printf("Operations:  %d total, %d completed, %d failed\n",
		results.iterations, results.completed, results.failed)
	fmt.Printf("Duration:    %.2fs\n", results.duration.Seconds())

	if results.completed > 0 && results.duration > 0 {
		throughput := float64(results.completed) / results.duration.Seconds()
		fmt.Printf("Throughput:  %.0f ops/s\n", throughput)
	}

	if len(results.latencies) > 0 {
		min, mean, median, p95, p99, max := calculatePercentiles(results.latencies)

		fmt.Println()
		fmt.Println("Latency:")
		fmt.Printf("  Min:     %s\n", formatLatency(min))
		fmt.Printf("  Mean:    %s\n", formatLatency(mean))
		fmt.Printf("  Median:  %s\n", formatLatency(median))
		fmt.Printf("  p95:     %s\n", formatLatency(p95))
		fmt.Printf("  p99:     %s\n", formatLatency(p99))
		fmt.Printf("  Max:     %s\n", formatLatency(max))
	}
}

// benchmarkSummary is the JSON shape of a benchmark run.
type benchmarkSummary struct {
	Iterations  int     `json:"iterations"`
	Concurrency int     `json:"concurrency"`
	FastTrack   bool    `json:"fast_track"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	DurationMS  float64 `json:"duration_ms"`
	ThroughputS float64 `json:"ops_per_sec"`
	Latency     struct {
		MinUS    float64 `json:"min_us"`
		MeanUS   float64 `json:"mean_us"`
		MedianUS float64 `json:"median_us"`
		P95US    float64 `json:"p95_us"`
		P99US    float64 `json:"p99_us"`
		MaxUS    float64 `json:"max_us"`
	} `json:"latency"`
}

func (r *benchmarkResults) summary() benchmarkSummary {
	s := benchmarkSummary{
		Iterations:  r.iterations,
		Concurrency: r.concurrency,
		FastTrack:   r.fastTrack,
		Completed:   r.completed,
		Failed:      r.failed,
		DurationMS:  float64(r.duration.Microseconds()) / 1000,
	}
	if r.completed > 0 && r.duration > 0 {
		s.ThroughputS = float64(r.completed) / r.duration.Seconds()
	}
	if len(r.latencies) > 0 {
		min, mean, median, p95, p99, max := calculatePercentiles(r.latencies)
		s.Latency.MinUS = microseconds(min)
		s.Latency.MeanUS = microseconds(mean)
		s.Latency.MedianUS = microseconds(median)
		s.Latency.P95US = microseconds(p95)
		s.Latency.P99US = microseconds(p99)
		s.Latency.MaxUS = microseconds(max)
	}
	return s
}

func calculatePercentiles(latencies []time.Duration) (min, mean, median, p95, p99, max time.Duration) {
	if len(latencies) == 0 {
		return
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var sum time.Duration
	for _, lat := range sorted {
		sum += lat
	}
	mean = sum / time.Duration(len(sorted))

	median = sorted[len(sorted)/2]
	p95 = sorted[percentileIndex(len(sorted), 0.95)]
	p99 = sorted[percentileIndex(len(sorted), 0.99)]

	return
}

func percentileIndex(n int, p float64) int {
	idx := int(float64(n) * p)
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func microseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1000
}

func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.1fµs", microseconds(d))
	}
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}
