package ops

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"cpbar/internal/logger"
	"cpbar/internal/progress"
	"cpbar/internal/speed"
)

// RemoveOptions configures a remove job.
type RemoveOptions struct {
	Recursive        bool
	Force            bool
	DryRun           bool
	CountdownSeconds int
	Model            *speed.Model
}

// Remove deletes targets with a shared progress bar. Unless forced, it
// imposes a short countdown and an explicit confirmation before touching
// anything.
func Remove(ctx context.Context, targets []string, opts RemoveOptions) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: no files specified for deletion", ErrNothingToDo)
	}

	files := CollectFiles(targets, opts.Recursive)

	var dirs []string

	if opts.Recursive {
		for _, target := range targets {
			if info, err := os.Stat(target); err == nil && info.IsDir() {
				dirs = append(dirs, target)
			}
		}
	}

	if len(files) == 0 && len(dirs) == 0 {
		return fmt.Errorf("%w: no files to delete", ErrNothingToDo)
	}

	totalBytes := totalSize(files)

	if opts.DryRun {
		est := speed.FormatDuration(opts.Model.Estimate(totalBytes, speed.Remove))
		printPreview(files, totalBytes, "deleted", est)

		if len(dirs) > 0 {
			fmt.Printf("\n%sDirectories:%s\n", colBold, colReset)

			for _, dir := range dirs {
				rel := dir
				if r, err := filepath.Rel(".", dir); err == nil {
					rel = r
				}

				fmt.Printf("  %s→%s %s/\n", colDim, colReset, rel)
			}
		}

		return nil
	}

	if !opts.Force {
		if !confirmDeletion(len(files), totalBytes, opts.CountdownSeconds) {
			fmt.Printf("%sOperation cancelled%s\n", colDim, colReset)
			return nil
		}
	}

	jobID := uuid.New()
	logger.Infof("Remove job %s: %d files, %d directories", jobID, len(files), len(dirs))

	fmt.Printf("%sDeleting %d files...%s\n", colBlue, len(files), colReset)

	tracker := progress.New(speed.Remove, int64(len(files)), totalBytes, opts.Model)

	for _, f := range files {
		tracker.Update(filepath.Base(f.Path), f.Size)

		if err := os.Remove(f.Path); err != nil {
			fmt.Fprintf(os.Stderr, "\n%sWarning: Could not delete '%s': %v%s\n", colYellow, f.Path, err, colReset)
			logger.Errorf("Remove job %s: %s failed: %v", jobID, f.Path, err)

			continue
		}

		tracker.CompleteItem()
	}

	// Directory skeletons go last, after their contents are gone.
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			fmt.Fprintf(os.Stderr, "\n%sWarning: Could not delete directory '%s': %v%s\n", colYellow, dir, err, colReset)
		}
	}

	tracker.Finish()
	logger.Infof("Remove job %s finished", jobID)

	return nil
}

// confirmDeletion counts down, then loops until the user answers. Returns
// true when deletion should proceed.
func confirmDeletion(count int, totalBytes int64, countdownSeconds int) bool {
	fmt.Printf("%sWill delete %d files (%s)%s\n", colYellow, count, humanize.IBytes(uint64(totalBytes)), colReset)

	for i := countdownSeconds; i > 0; i-- {
		fmt.Printf("\r%sWait %ds before confirming...%s  ", colDim, i, colReset)
		time.Sleep(1 * time.Second)
	}

	fmt.Print("\r" + strings.Repeat(" ", 40) + "\r")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Printf("%sContinue? [y/N]: %s", colBold, colReset)

		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no", "":
			return false
		default:
			fmt.Printf("%sInvalid option. Use: y (yes) or n (no)%s\n", colRed, colReset)
		}
	}
}
