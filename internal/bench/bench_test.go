package bench

import (
	"errors"
	"testing"
	"time"
)

func TestSelectOptimal(t *testing.T) {
	t.Parallel()

	counts := []int{1, 2, 4, 6, 8}

	tests := []struct {
		name    string
		results map[int]time.Duration
		want    int
	}{
		{
			"strict minimum wins",
			map[int]time.Duration{
				1: 4 * time.Second,
				2: 2 * time.Second,
				4: time.Second,
				6: 1500 * time.Millisecond,
				8: 3 * time.Second,
			},
			4,
		},
		{
			"tie resolves to the smaller count",
			map[int]time.Duration{
				1: 2 * time.Second,
				2: time.Second,
				4: time.Second,
				6: time.Second,
				8: 2 * time.Second,
			},
			2,
		},
		{
			"all equal keeps the first",
			map[int]time.Duration{
				1: time.Second,
				2: time.Second,
				4: time.Second,
				6: time.Second,
				8: time.Second,
			},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := selectOptimal(counts, tt.results); got != tt.want {
				t.Errorf("expected %d workers, got %d", tt.want, got)
			}
		})
	}
}

func TestRunTrialsAverages(t *testing.T) {
	t.Parallel()

	calls := make(map[int]int)

	// Each trial for a count returns 1x, 2x, 3x the worker count in
	// milliseconds, so the average is 2x.
	results, err := runTrials([]int{1, 4}, func(workers int) (time.Duration, error) {
		calls[workers]++
		return time.Duration(workers*calls[workers]) * time.Millisecond, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, workers := range []int{1, 4} {
		if calls[workers] != trials {
			t.Errorf("expected %d trials for %d workers, got %d", trials, workers, calls[workers])
		}

		want := time.Duration(2*workers) * time.Millisecond
		if results[workers] != want {
			t.Errorf("expected average %v for %d workers, got %v", want, workers, results[workers])
		}
	}
}

func TestRunTrialsPropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")

	_, err := runTrials([]int{1, 2}, func(workers int) (time.Duration, error) {
		if workers == 2 {
			return 0, boom
		}

		return time.Millisecond, nil
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected the trial error wrapped, got %v", err)
	}
}
