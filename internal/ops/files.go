// Package ops orchestrates multi-file copy and remove jobs: it enumerates
// the work, drives the engine file by file and feeds one shared progress
// tracker. Per-file failures are reported and skipped; they never stop the
// batch.
package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"cpbar/internal/logger"
)

const (
	colReset  = "\033[0m"
	colBold   = "\033[1m"
	colGreen  = "\033[32m"
	colBlue   = "\033[34m"
	colCyan   = "\033[36m"
	colYellow = "\033[33m"
	colRed    = "\033[31m"
	colDim    = "\033[2m"
)

// FileEntry is one file queued for processing.
type FileEntry struct {
	Path string
	Size int64
}

// CollectFiles expands the given paths into individual files with their
// sizes. Unreadable entries are warned about and carried with size zero so
// the item count still reflects them; missing paths and non-recursive
// directories are reported and dropped.
func CollectFiles(paths []string, recursive bool) []FileEntry {
	var files []FileEntry

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%sError: '%s' does not exist%s\n", colRed, path, colReset)
			continue
		}

		if !info.IsDir() {
			files = append(files, FileEntry{Path: path, Size: info.Size()})
			continue
		}

		if !recursive {
			fmt.Fprintf(os.Stderr, "%sError: '%s' is a directory. Use -r for recursive%s\n", colRed, path, colReset)
			continue
		}

		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				fmt.Fprintf(os.Stderr, "%sWarning: Cannot access '%s': %v%s\n", colYellow, p, err, colReset)
				return nil
			}

			if !fi.Mode().IsRegular() {
				return nil
			}

			files = append(files, FileEntry{Path: p, Size: fi.Size()})

			return nil
		})
		if err != nil {
			logger.Warnf("Walk of %s failed: %v", path, err)
		}
	}

	return files
}

func totalSize(files []FileEntry) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}

	return total
}

// isWithin reports whether path sits at or below dir. A plain lexical
// containment check; no feature probing, no prefix string matching.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// systemDirs are handled by the native tools; writing into them through the
// progress machinery is not worth the risk.
var systemDirs = []string{"/bin", "/boot", "/etc", "/lib", "/lib64", "/sbin", "/sys", "/usr", "/proc", "/dev"}

func isSystemDirectory(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	for _, dir := range systemDirs {
		if abs == dir || isWithin(dir, abs) {
			return true
		}
	}

	return false
}

// printPreview renders the shared dry-run summary.
func printPreview(files []FileEntry, totalBytes int64, noun, estimate string) {
	fmt.Printf("%s🔍 Dry-run mode - No files will be %s%s\n\n", colCyan, noun, colReset)
	fmt.Printf("%sSummary:%s\n", colBold, colReset)
	fmt.Printf("  Files: %s%d%s\n", colGreen, len(files), colReset)
	fmt.Printf("  Total size: %s%s%s\n", colGreen, humanize.IBytes(uint64(totalBytes)), colReset)
	fmt.Printf("  Estimated time: %s~%s%s\n\n", colYellow, estimate, colReset)

	fmt.Printf("%sFiles (showing first 10):%s\n", colBold, colReset)

	shown := files
	if len(shown) > 10 {
		shown = shown[:10]
	}

	for _, f := range shown {
		rel := f.Path
		if r, err := filepath.Rel(".", f.Path); err == nil {
			rel = r
		}

		fmt.Printf("  %s→%s %s %s(%s)%s\n", colDim, colReset, rel, colDim, humanize.IBytes(uint64(f.Size)), colReset)
	}

	if len(files) > 10 {
		fmt.Printf("  %s... and %d more files%s\n", colDim, len(files)-10, colReset)
	}
}
