// Package progress maintains thread-safe transfer counters for one operation
// and draws a single status line pinned to the bottom of the terminal.
package progress

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"cpbar/internal/logger"
	"cpbar/internal/speed"
)

const (
	// sampleInterval is the minimum wall-clock gap between speed samples.
	sampleInterval = 100 * time.Millisecond

	// idleResetGap is the gap after which the smoothed speed is reset to
	// zero instead of producing a spike from an idle period (for example a
	// blocked overwrite prompt).
	idleResetGap = 2 * time.Second

	// smoothingFactor is the EMA weight of the previous smoothed speed.
	smoothingFactor = 0.7
)

// Tracker aggregates progress from any number of workers. All counters are
// guarded by one mutex held only for state mutation; rendering always happens
// on a snapshot taken after the lock is released.
type Tracker struct {
	mu sync.Mutex

	kind       speed.Kind
	totalItems int64
	totalBytes int64

	completedItems int64
	completedBytes int64
	skippedItems   int64
	currentFile    string
	overwriteAll   bool

	startTime       time.Time
	lastSampleTime  time.Time
	lastSampleBytes int64
	smoothedSpeed   float64 // bytes per second

	started     bool
	interactive bool
	out         *os.File
	stdin       *bufio.Reader
	now         func() time.Time
	model       *speed.Model

	sigCh chan os.Signal
}

// snapshot captures the display fields of one render frame.
type snapshot struct {
	kind           speed.Kind
	completedItems int64
	totalItems     int64
	completedBytes int64
	totalBytes     int64
	speed          float64
	label          string
	elapsed        time.Duration
}

// New creates a tracker for an operation over totalItems files summing
// totalBytes. The model receives the observed throughput at Finish; it may
// be nil.
func New(kind speed.Kind, totalItems, totalBytes int64, model *speed.Model) *Tracker {
	now := time.Now()

	return &Tracker{
		kind:           kind,
		totalItems:     totalItems,
		totalBytes:     totalBytes,
		startTime:      now,
		lastSampleTime: now,
		interactive:    term.IsTerminal(int(os.Stdout.Fd())),
		out:            os.Stdout,
		now:            time.Now,
		model:          model,
	}
}

// Update records bytesDelta additional processed bytes and the label to
// display. Safe to call from any number of workers. A zero delta re-renders
// without changing counters, which is how resize events are handled.
func (t *Tracker) Update(label string, bytesDelta int64) {
	t.setup()

	t.mu.Lock()

	t.currentFile = label
	t.completedBytes += bytesDelta

	now := t.now()
	gap := now.Sub(t.lastSampleTime)

	switch {
	case gap > idleResetGap:
		t.smoothedSpeed = 0
		t.lastSampleBytes = t.completedBytes
		t.lastSampleTime = now
	case gap >= sampleInterval:
		instant := float64(t.completedBytes-t.lastSampleBytes) / gap.Seconds()
		t.smoothedSpeed = smoothingFactor*t.smoothedSpeed + (1-smoothingFactor)*instant
		t.lastSampleBytes = t.completedBytes
		t.lastSampleTime = now
	}

	snap := t.snapshotLocked()

	t.mu.Unlock()

	// Terminal I/O stays outside the lock so a slow write never serializes
	// the workers.
	t.render(snap)
}

// CompleteItem marks one item as finished. Independent of byte updates so
// zero-length files still advance item progress.
func (t *Tracker) CompleteItem() {
	t.mu.Lock()
	t.completedItems++
	t.mu.Unlock()
}

// CompletedBytes returns the byte counter.
func (t *Tracker) CompletedBytes() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.completedBytes
}

// CompletedItems returns the item counter.
func (t *Tracker) CompletedItems() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.completedItems
}

// Skipped returns the number of declined overwrites.
func (t *Tracker) Skipped() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.skippedItems
}

func (t *Tracker) snapshotLocked() snapshot {
	return snapshot{
		kind:           t.kind,
		completedItems: t.completedItems,
		totalItems:     t.totalItems,
		completedBytes: t.completedBytes,
		totalBytes:     t.totalBytes,
		speed:          t.smoothedSpeed,
		label:          t.currentFile,
		elapsed:        t.now().Sub(t.startTime),
	}
}

// setup hides the cursor, reserves the bottom line and installs the signal
// handlers, exactly once.
func (t *Tracker) setup() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}

	t.started = true
	t.mu.Unlock()

	if !t.interactive {
		return
	}

	fmt.Fprint(t.out, cursorHide+"\n")

	t.sigCh = make(chan os.Signal, 1)
	signal.Notify(t.sigCh, os.Interrupt, unix.SIGWINCH)

	go t.handleSignals()
}

func (t *Tracker) handleSignals() {
	for sig := range t.sigCh {
		if sig == unix.SIGWINCH {
			t.mu.Lock()
			label := t.currentFile
			t.mu.Unlock()

			// Zero delta: re-render at the new width without double
			// counting.
			t.Update(label, 0)

			continue
		}

		// Interrupt: best-effort terminal restore without touching the
		// progress lock, which another worker may hold.
		fmt.Fprint(t.out, cursorShow)
		fmt.Fprintf(t.out, "\n%s⚠ Operation cancelled by user%s\n", colYellow, colReset)
		os.Exit(130)
	}
}

// Finish clears the status line, prints a one-line summary and reports the
// observed throughput for persistence when the operation ran long enough to
// measure.
func (t *Tracker) Finish() {
	t.mu.Lock()
	snap := t.snapshotLocked()
	skipped := t.skippedItems
	t.mu.Unlock()

	if t.sigCh != nil {
		signal.Stop(t.sigCh)
		close(t.sigCh)
	}

	if snap.completedBytes > 0 && snap.elapsed > 100*time.Millisecond && t.model != nil {
		mbps := float64(snap.completedBytes) / (1024 * 1024) / snap.elapsed.Seconds()
		t.model.Record(snap.kind, mbps)
		logger.Debugf("Recorded %s throughput: %.1f MB/s", snap.kind, mbps)
	}

	t.printSummary(snap, skipped)
}

// Cleanup restores the cursor. Safe to call multiple times; used on abort
// paths that bypass Finish.
func (t *Tracker) Cleanup() {
	if t.interactive {
		fmt.Fprint(t.out, cursorShow)
	}
}
