// Package engine copies files, either as a single sequential stream or as
// fixed-size blocks written concurrently at disjoint offsets of one
// pre-sized destination file.
package engine

import "errors"

// ErrAborted is returned when the overwrite prompt asks to stop the whole
// operation.
var ErrAborted = errors.New("operation aborted by user")

// Reporter receives progress updates from copy operations. Implementations
// must be safe for concurrent use.
type Reporter interface {
	Update(label string, bytesDelta int64)
	CompleteItem()
}

// NopReporter discards all progress updates. The benchmark uses it to time
// copies without display overhead.
type NopReporter struct{}

func (NopReporter) Update(string, int64) {}

func (NopReporter) CompleteItem() {}

// Decision is the outcome of an overwrite prompt.
type Decision int

const (
	Proceed Decision = iota
	Skip
	ProceedAll
	Abort
)

// Prompter decides what to do when a destination file already exists. It is
// consulted before any bytes are written.
type Prompter interface {
	AskOverwrite(dst string) Decision
}

// ProceedPrompter always overwrites without asking.
type ProceedPrompter struct{}

func (ProceedPrompter) AskOverwrite(string) Decision { return Proceed }
