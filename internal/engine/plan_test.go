package engine_test

import (
	"testing"

	"cpbar/internal/engine"
)

func TestPlan(t *testing.T) {
	t.Parallel()

	const mib = 1024 * 1024

	tests := []struct {
		name      string
		size      int64
		blockSize int64
		want      int
		wantLast  int64
	}{
		{"evenly divides", 4 * mib, mib, 4, mib},
		{"remainder block", 200 * mib, 32 * mib, 7, 8 * mib},
		{"single block", 100, 1024, 1, 100},
		{"one byte over", mib + 1, mib, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			blocks := engine.Plan(tt.size, tt.blockSize)

			if len(blocks) != tt.want {
				t.Fatalf("expected %d blocks, got %d", tt.want, len(blocks))
			}

			if last := blocks[len(blocks)-1].Length; last != tt.wantLast {
				t.Errorf("expected last block length %d, got %d", tt.wantLast, last)
			}

			// Blocks must tile [0, size) exactly: contiguous, ordered,
			// no gaps or overlaps.
			var offset, sum int64

			for i, b := range blocks {
				if b.Index != i {
					t.Errorf("block %d has index %d", i, b.Index)
				}

				if b.Offset != offset {
					t.Errorf("block %d starts at %d, expected %d", i, b.Offset, offset)
				}

				if b.Length <= 0 || b.Length > tt.blockSize {
					t.Errorf("block %d has length %d", i, b.Length)
				}

				offset += b.Length
				sum += b.Length
			}

			if sum != tt.size {
				t.Errorf("block lengths sum to %d, expected %d", sum, tt.size)
			}
		})
	}
}

func TestPlanDegenerate(t *testing.T) {
	t.Parallel()

	if blocks := engine.Plan(0, 1024); blocks != nil {
		t.Errorf("expected nil plan for empty file, got %v", blocks)
	}

	if blocks := engine.Plan(1024, 0); blocks != nil {
		t.Errorf("expected nil plan for zero block size, got %v", blocks)
	}
}
