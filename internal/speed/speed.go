// Package speed estimates operation durations from throughput observed in
// past runs, learning as it goes.
package speed

import (
	"fmt"
	"time"

	"cpbar/internal/logger"
	"cpbar/internal/store"
)

// Kind identifies the operation a throughput sample belongs to.
type Kind string

const (
	Copy   Kind = "copy"
	Remove Kind = "remove"
)

// Conservative fallbacks used until real samples exist.
const (
	defaultCopyMBps   = 100
	defaultRemoveMBps = 200
)

// maxSamples bounds the persisted history per operation kind.
const maxSamples = 10

func (k Kind) sampleKey() string {
	if k == Remove {
		return "delete_speeds_mbps"
	}

	return "copy_speeds_mbps"
}

func (k Kind) defaultMBps() float64 {
	if k == Remove {
		return defaultRemoveMBps
	}

	return defaultCopyMBps
}

// Model produces duration estimates from recorded throughput samples.
type Model struct {
	store *store.Store
}

// NewModel creates a model backed by st. A nil store is valid; the model
// then estimates from defaults and records nothing.
func NewModel(st *store.Store) *Model {
	return &Model{store: st}
}

// Estimate returns the expected duration for processing totalBytes. Zero
// bytes yields a zero duration, the "under one second" sentinel rendered by
// FormatDuration.
func (m *Model) Estimate(totalBytes int64, kind Kind) time.Duration {
	if totalBytes == 0 {
		return 0
	}

	avg := kind.defaultMBps()

	samples, err := m.store.Samples(kind.sampleKey())
	if err != nil {
		logger.Warnf("Could not read %s samples: %v", kind, err)
	} else if len(samples) > 0 {
		var sum float64
		for _, s := range samples {
			sum += s
		}

		avg = sum / float64(len(samples))
	}

	seconds := float64(totalBytes) / (avg * 1024 * 1024)

	return time.Duration(seconds * float64(time.Second))
}

// Record appends an observed throughput sample (MB/s) for kind, keeping only
// the most recent entries. Persistence failures are swallowed; a run that
// cannot save its sample simply teaches nothing.
func (m *Model) Record(kind Kind, throughputMBps float64) {
	samples, err := m.store.Samples(kind.sampleKey())
	if err != nil {
		logger.Warnf("Could not read %s samples: %v", kind, err)
		samples = nil
	}

	samples = append(samples, throughputMBps)
	if len(samples) > maxSamples {
		samples = samples[len(samples)-maxSamples:]
	}

	if err := m.store.SaveSamples(kind.sampleKey(), samples); err != nil {
		logger.Warnf("Could not save %s samples: %v", kind, err)
	}
}

// FormatDuration renders a duration estimate for display.
func FormatDuration(d time.Duration) string {
	seconds := int(d.Seconds())

	switch {
	case seconds < 1:
		return "< 1s"
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}
