// Package bench measures parallel copy performance across a matrix of
// worker counts and persists the winner as the default parallelism level.
package bench

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cpbar/internal/engine"
	"cpbar/internal/logger"
	"cpbar/internal/store"
)

const (
	payloadSize = 100 * 1024 * 1024
	chunkSize   = 16 * 1024 * 1024
	blockSize   = 32 * 1024 * 1024
	trials      = 3
)

// workerCounts are tried in ascending order; ties resolve to the smallest.
var workerCounts = []int{1, 2, 4, 6, 8}

// Run benchmarks the copy engine on a synthetic payload and persists the
// optimal worker count. The scratch directory is removed on every exit path.
func Run(ctx context.Context, st *store.Store, quiet bool, out io.Writer) (int, error) {
	if !quiet {
		fmt.Fprintf(out, "🔬 Running benchmark to determine optimal parallel workers...\n\n")
	}

	scratch, err := os.MkdirTemp("", "cpbar-bench-")
	if err != nil {
		return 0, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	payload := filepath.Join(scratch, "payload.bin")

	if !quiet {
		fmt.Fprintln(out, "Creating 100MB test file...")
	}

	if err := writePayload(payload); err != nil {
		return 0, err
	}

	if !quiet {
		fmt.Fprintf(out, "\nTesting different worker counts:\n")
	}

	results, err := runTrials(workerCounts, func(workers int) (time.Duration, error) {
		return timeTrial(ctx, payload, filepath.Join(scratch, fmt.Sprintf("copy_%d.bin", workers)), workers)
	})
	if err != nil {
		return 0, err
	}

	if !quiet {
		for _, workers := range workerCounts {
			avg := results[workers]
			mbps := float64(payloadSize) / (1024 * 1024) / avg.Seconds()
			fmt.Fprintf(out, "  %2d workers: %.3fs  (%.1f MB/s)\n", workers, avg.Seconds(), mbps)
		}
	}

	optimal := selectOptimal(workerCounts, results)

	rec := store.BenchmarkRecord{
		OptimalWorkers: optimal,
		Date:           time.Now().Format("2006-01-02 15:04:05"),
		Results:        make(map[string]string, len(results)),
	}
	for workers, avg := range results {
		rec.Results[fmt.Sprintf("%d", workers)] = fmt.Sprintf("%.3fs", avg.Seconds())
	}

	if err := st.SaveBenchmark(rec); err != nil {
		logger.Warnf("Could not save benchmark record: %v", err)
	}

	if quiet {
		fmt.Fprintf(out, "✓ Optimal: %d workers (saved)\n", optimal)
	} else {
		fmt.Fprintf(out, "\n✓ Optimal configuration: %d workers\n", optimal)
	}

	return optimal, nil
}

// runTrials averages the trial function over the fixed trial count for every
// candidate worker count.
func runTrials(counts []int, trial func(workers int) (time.Duration, error)) (map[int]time.Duration, error) {
	results := make(map[int]time.Duration, len(counts))

	for _, workers := range counts {
		var total time.Duration

		for i := 0; i < trials; i++ {
			elapsed, err := trial(workers)
			if err != nil {
				return nil, fmt.Errorf("trial with %d workers: %w", workers, err)
			}

			total += elapsed
		}

		results[workers] = total / trials
	}

	return results, nil
}

// selectOptimal returns the worker count with the lowest average time.
// Candidates are scanned in order, so equal minima resolve to the first,
// smallest count.
func selectOptimal(counts []int, results map[int]time.Duration) int {
	best := counts[0]

	for _, workers := range counts[1:] {
		if results[workers] < results[best] {
			best = workers
		}
	}

	return best
}

// timeTrial copies the payload once, progress-free, and returns the wall
// clock elapsed. A single worker uses the plain streaming copy as baseline.
func timeTrial(ctx context.Context, payload, dst string, workers int) (time.Duration, error) {
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to reset trial destination: %w", err)
	}

	start := time.Now()

	var err error
	if workers == 1 {
		_, err = engine.CopyFile(payload, dst, engine.NopReporter{}, engine.ProceedPrompter{}, chunkSize)
	} else {
		_, err = engine.CopyFileParallel(ctx, payload, dst, engine.NopReporter{}, engine.ProceedPrompter{}, workers, blockSize)
	}

	if err != nil {
		return 0, err
	}

	return time.Since(start), nil
}

// writePayload fills the benchmark file with random bytes, written in
// fixed-size chunks.
func writePayload(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create payload: %w", err)
	}

	buf := make([]byte, chunkSize)

	for remaining := int64(payloadSize); remaining > 0; remaining -= chunkSize {
		n := int64(chunkSize)
		if remaining < n {
			n = remaining
		}

		if _, err := rand.Read(buf[:n]); err != nil {
			f.Close()
			return fmt.Errorf("failed to generate payload: %w", err)
		}

		if _, err := f.Write(buf[:n]); err != nil {
			f.Close()
			return fmt.Errorf("failed to write payload: %w", err)
		}
	}

	return f.Close()
}
