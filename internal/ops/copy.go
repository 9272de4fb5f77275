package ops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"cpbar/internal/engine"
	"cpbar/internal/logger"
	"cpbar/internal/progress"
	"cpbar/internal/speed"
)

// CopyOptions configures a copy job.
type CopyOptions struct {
	Recursive         bool
	DryRun            bool
	Workers           int // 0 disables the parallel path
	BufferSize        int64
	BlockSize         int64
	ParallelThreshold int64
	Model             *speed.Model
}

// ErrNothingToDo is returned when no usable input files were found.
var ErrNothingToDo = errors.New("no files to process")

// Copy copies sources to destination with a shared progress bar. Large files
// go through the parallel block engine when a worker count is configured.
func Copy(ctx context.Context, sources []string, destination string, opts CopyOptions) error {
	if len(sources) == 0 {
		return fmt.Errorf("%w: no source files specified", ErrNothingToDo)
	}

	// System directories are left to the native tool.
	if isSystemDirectory(destination) {
		fmt.Printf("%sSystem directory detected, using /bin/cp...%s\n", colDim, colReset)
		return runNativeCopy(sources, destination, opts.Recursive)
	}

	if info, err := os.Stat(destination); len(sources) > 1 && (err != nil || !info.IsDir()) {
		if err == nil {
			return fmt.Errorf("destination must be a directory for multiple sources")
		}

		if !opts.DryRun {
			if err := os.MkdirAll(destination, 0o755); err != nil {
				return fmt.Errorf("failed to create destination directory: %w", err)
			}
		}
	}

	files := CollectFiles(sources, opts.Recursive)
	if len(files) == 0 {
		return fmt.Errorf("%w: no files to copy", ErrNothingToDo)
	}

	totalBytes := totalSize(files)

	if opts.DryRun {
		est := speed.FormatDuration(opts.Model.Estimate(totalBytes, speed.Copy))
		printPreview(files, totalBytes, "copied", est)
		fmt.Printf("\n  Destination: %s%s%s\n", colBlue, destination, colReset)

		return nil
	}

	jobID := uuid.New()
	logger.Infof("Copy job %s: %d files, %d bytes -> %s", jobID, len(files), totalBytes, destination)

	fmt.Printf("%sCopying %d files (%s)...%s\n", colBlue, len(files), humanize.IBytes(uint64(totalBytes)), colReset)

	tracker := progress.New(speed.Copy, int64(len(files)), totalBytes, opts.Model)

	var dirSources []string
	if opts.Recursive {
		for _, src := range sources {
			if info, err := os.Stat(src); err == nil && info.IsDir() {
				dirSources = append(dirSources, src)
			}
		}
	}

	for _, f := range files {
		dst := destination

		// Files under a recursively-copied directory keep their structure
		// below destination/<dirname>/.
		for _, dir := range dirSources {
			if !isWithin(dir, f.Path) {
				continue
			}

			rel, err := filepath.Rel(dir, f.Path)
			if err != nil {
				break
			}

			dst = filepath.Join(destination, filepath.Base(dir), rel)

			break
		}

		copied, err := copyOne(ctx, f, dst, tracker, opts)
		if err != nil {
			if errors.Is(err, engine.ErrAborted) {
				tracker.Cleanup()
				fmt.Printf("\n%s⚠ Operation cancelled by user%s\n", colYellow, colReset)

				return err
			}

			fmt.Fprintf(os.Stderr, "\n%sWarning: Could not copy '%s': %v%s\n", colYellow, f.Path, err, colReset)
			logger.Errorf("Copy job %s: %s failed: %v", jobID, f.Path, err)

			continue
		}

		if copied {
			tracker.CompleteItem()
		}
	}

	tracker.Finish()
	logger.Infof("Copy job %s finished", jobID)

	return nil
}

func copyOne(ctx context.Context, f FileEntry, dst string, tracker *progress.Tracker, opts CopyOptions) (bool, error) {
	if opts.Workers > 0 && f.Size > opts.ParallelThreshold {
		return engine.CopyFileParallel(ctx, f.Path, dst, tracker, tracker, opts.Workers, opts.BlockSize)
	}

	return engine.CopyFile(f.Path, dst, tracker, tracker, opts.BufferSize)
}

func runNativeCopy(sources []string, destination string, recursive bool) error {
	args := []string{}
	if recursive {
		args = append(args, "-r")
	}

	args = append(args, sources...)
	args = append(args, destination)

	cmd := exec.Command("/bin/cp", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
