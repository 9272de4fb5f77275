package store

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := Open(filepath.Join(t.TempDir(), "state", "state.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() { st.Close() })

	return st
}

func TestSamplesRoundtrip(t *testing.T) {
	st := openTestStore(t)

	want := []float64{120.5, 98.2, 143.0}

	if err := st.SaveSamples("copy_speeds_mbps", want); err != nil {
		t.Fatalf("failed to save samples: %v", err)
	}

	got, err := st.Samples("copy_speeds_mbps")
	if err != nil {
		t.Fatalf("failed to read samples: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestSamplesMissingKey(t *testing.T) {
	st := openTestStore(t)

	got, err := st.Samples("delete_speeds_mbps")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != nil {
		t.Errorf("expected nil for a missing key, got %v", got)
	}
}

func TestBenchmarkRoundtrip(t *testing.T) {
	st := openTestStore(t)

	rec, err := st.Benchmark()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec != nil {
		t.Fatalf("expected no record in a fresh store, got %+v", rec)
	}

	want := BenchmarkRecord{
		OptimalWorkers: 4,
		Date:           "2026-08-31T12:00:00Z",
		Results:        map[string]string{"1": "1.21s", "4": "0.48s"},
	}

	if err := st.SaveBenchmark(want); err != nil {
		t.Fatalf("failed to save benchmark: %v", err)
	}

	rec, err = st.Benchmark()
	if err != nil {
		t.Fatalf("failed to read benchmark: %v", err)
	}

	if rec == nil {
		t.Fatal("expected a record after save")
	}

	if rec.OptimalWorkers != want.OptimalWorkers || rec.Date != want.Date {
		t.Errorf("expected %+v, got %+v", want, *rec)
	}

	if rec.Results["4"] != "0.48s" {
		t.Errorf("expected results map to survive, got %v", rec.Results)
	}
}

func TestOptimalWorkers(t *testing.T) {
	st := openTestStore(t)

	if got := st.OptimalWorkers(4); got != 4 {
		t.Errorf("expected fallback 4 before any benchmark, got %d", got)
	}

	if err := st.SaveBenchmark(BenchmarkRecord{OptimalWorkers: 6}); err != nil {
		t.Fatalf("failed to save benchmark: %v", err)
	}

	if got := st.OptimalWorkers(4); got != 6 {
		t.Errorf("expected benchmarked value 6, got %d", got)
	}
}

func TestNilStore(t *testing.T) {
	var st *Store

	samples, err := st.Samples("copy_speeds_mbps")
	if err != nil || samples != nil {
		t.Errorf("nil store reads must be empty: samples=%v err=%v", samples, err)
	}

	rec, err := st.Benchmark()
	if err != nil || rec != nil {
		t.Errorf("nil store reads must be empty: rec=%v err=%v", rec, err)
	}

	if got := st.OptimalWorkers(4); got != 4 {
		t.Errorf("expected fallback from nil store, got %d", got)
	}

	if err := st.SaveSamples("copy_speeds_mbps", []float64{1}); err == nil {
		t.Error("expected an error writing to a nil store")
	}

	if err := st.Close(); err != nil {
		t.Errorf("nil store close must be a no-op, got %v", err)
	}
}

func TestOpenFailure(t *testing.T) {
	dir := t.TempDir()

	// Parent path occupied by a regular file, so the directory cannot be
	// created.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create blocker file: %v", err)
	}

	if _, err := Open(filepath.Join(blocker, "state.db")); err == nil {
		t.Error("expected an error when the state directory cannot be created")
	}
}
