// Package logger provides file-backed debug logging. The terminal's last row
// belongs to the progress bar, so log output never goes to stdout or stderr.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu      sync.Mutex
	l       *log.Logger
	logFile *os.File
)

// Init enables logging to the given file. Before Init (or after a failed
// Init) all log calls are no-ops.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	l = log.New(f, "", log.LstdFlags|log.Lmicroseconds)

	return nil
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		l = nil
	}
}

func output(level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if l == nil {
		return
	}

	l.Printf(level+" "+format, args...)
}

func Debugf(format string, args ...any) { output("DEBUG", format, args...) }

func Infof(format string, args ...any) { output("INFO", format, args...) }

func Warnf(format string, args ...any) { output("WARN", format, args...) }

func Errorf(format string, args ...any) { output("ERROR", format, args...) }
