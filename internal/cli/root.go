// Package cli implements the cpbar command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"cpbar/internal/config"
	"cpbar/internal/engine"
	"cpbar/internal/logger"
	"cpbar/internal/speed"
	"cpbar/internal/store"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "cpbar",
	Short: "Copy and remove files with a unified progress bar",
	Long: `cpbar augments file copy and removal with a live progress bar, learned
time estimates, and an optional parallel block mode for large files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs to the state directory")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	// "q" at the overwrite prompt is a clean stop, not a failure.
	if errors.Is(err, engine.ErrAborted) {
		return 0
	}

	if errors.Is(err, context.Canceled) {
		return 130
	}

	// The native-tool fallback passes its exit code through.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	return 1
}

// setup loads configuration and opens the state store. A broken store
// degrades to nil; every consumer treats that as "no learned state".
func setup() (*config.Config, *store.Store, *speed.Model, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if debug {
		logPath := filepath.Join(xdg.StateHome, "cpbar", "cpbar.log")
		if err := logger.Init(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: debug logging unavailable: %v\n", err)
		}
	}

	st, err := store.Open(cfg.StatePath)
	if err != nil {
		logger.Warnf("State store unavailable: %v", err)
		st = nil
	}

	return cfg, st, speed.NewModel(st), nil
}

func teardown(st *store.Store) {
	if err := st.Close(); err != nil {
		logger.Warnf("Could not close state store: %v", err)
	}

	logger.Close()
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
