package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"cpbar/internal/logger"
)

// fallbackBufferSize is used when the parallel path delegates a small file to
// the sequential copy.
const fallbackBufferSize = 16 * 1024 * 1024

// CopyFile copies src to dst sequentially, reporting progress per buffer.
// It returns false with a nil error when the user declined to overwrite an
// existing destination.
func CopyFile(src, dst string, rep Reporter, pr Prompter, bufSize int64) (bool, error) {
	dst = resolveDst(src, dst)

	ok, err := checkOverwrite(dst, pr)
	if err != nil || !ok {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, fmt.Errorf("failed to create destination directory: %w", err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("failed to stat source: %w", err)
	}

	label := filepath.Base(src)

	if info.Size() == 0 {
		if err := createEmpty(dst); err != nil {
			return false, err
		}

		rep.Update(label, 0)

		return true, copyMetadata(info, dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return false, fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return false, fmt.Errorf("failed to create destination: %w", err)
	}

	buf := make([]byte, bufSize)

	for {
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				out.Close()
				return false, fmt.Errorf("failed to write destination: %w", writeErr)
			}

			rep.Update(label, int64(n))
		}

		if readErr == io.EOF {
			break
		}

		if readErr != nil {
			out.Close()
			return false, fmt.Errorf("failed to read source: %w", readErr)
		}
	}

	if err := out.Close(); err != nil {
		return false, fmt.Errorf("failed to close destination: %w", err)
	}

	return true, copyMetadata(info, dst)
}

// CopyFileParallel copies src to dst by splitting it into blocks and copying
// them on a bounded worker pool. Files smaller than two blocks fall back to
// the sequential path; per-worker overhead dominates below that size. A
// failed copy removes the partial destination and returns the worker's
// original error.
func CopyFileParallel(ctx context.Context, src, dst string, rep Reporter, pr Prompter, workers int, blockSize int64) (bool, error) {
	dst = resolveDst(src, dst)

	ok, err := checkOverwrite(dst, pr)
	if err != nil || !ok {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, fmt.Errorf("failed to create destination directory: %w", err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("failed to stat source: %w", err)
	}

	label := filepath.Base(src)

	if info.Size() == 0 {
		if err := createEmpty(dst); err != nil {
			return false, err
		}

		rep.Update(label, 0)

		return true, copyMetadata(info, dst)
	}

	if info.Size() < 2*blockSize {
		return CopyFile(src, dst, rep, ProceedPrompter{}, fallbackBufferSize)
	}

	if workers <= 0 {
		workers = 1
	}

	if err := presize(dst, info.Size()); err != nil {
		removeQuiet(dst)
		return false, err
	}

	blocks := Plan(info.Size(), blockSize)
	logger.Debugf("Parallel copy %s: %d blocks of %d bytes, %d workers", src, len(blocks), blockSize, workers)

	if err := runBlocks(ctx, src, dst, blocks, workers, rep); err != nil {
		return false, err
	}

	return true, copyMetadata(info, dst)
}

// presize grows dst to size bytes by writing a single sentinel byte at the
// end, so workers can write at arbitrary offsets.
func presize(dst string, size int64) error {
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := f.WriteAt([]byte{0}, size-1); err != nil {
		f.Close()
		return fmt.Errorf("failed to presize destination: %w", err)
	}

	return f.Close()
}

// runBlocks copies every block on a pool of workers bounded to the given
// size. The first failure cancels pending work; in-flight blocks are awaited
// and the partial destination is removed before the original error is
// returned.
func runBlocks(ctx context.Context, src, dst string, blocks []Block, workers int, rep Reporter) error {
	var writeMu sync.Mutex

	label := filepath.Base(src)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, b := range blocks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := readBlock(src, b)
			if err != nil {
				return fmt.Errorf("block %d: %w", b.Index, err)
			}

			// One shared lock serializes all destination writes; reads need
			// no synchronization since every block is disjoint.
			writeMu.Lock()
			err = writeBlock(dst, b.Offset, data)
			writeMu.Unlock()

			if err != nil {
				return fmt.Errorf("block %d: %w", b.Index, err)
			}

			rep.Update(label, int64(len(data)))

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		removeQuiet(dst)
		return err
	}

	return nil
}

// readBlock opens the source independently and reads exactly the block's
// byte range.
func readBlock(src string, b Block) ([]byte, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer f.Close()

	data := make([]byte, b.Length)
	if _, err := f.ReadAt(data, b.Offset); err != nil {
		return nil, fmt.Errorf("failed to read source at %d: %w", b.Offset, err)
	}

	return data, nil
}

func writeBlock(dst string, offset int64, data []byte) error {
	f, err := os.OpenFile(dst, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open destination: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteAt(data, offset); err != nil {
		return fmt.Errorf("failed to write destination at %d: %w", offset, err)
	}

	return nil
}

// resolveDst appends the source's base name when dst is an existing
// directory.
func resolveDst(src, dst string) string {
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return filepath.Join(dst, filepath.Base(src))
	}

	return dst
}

// checkOverwrite consults the prompter when dst already exists. It returns
// false with a nil error for a skip and ErrAborted when the user quit.
func checkOverwrite(dst string, pr Prompter) (bool, error) {
	if _, err := os.Lstat(dst); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}

		return false, fmt.Errorf("failed to stat destination: %w", err)
	}

	switch pr.AskOverwrite(dst) {
	case Proceed, ProceedAll:
		return true, nil
	case Skip:
		return false, nil
	case Abort:
		return false, ErrAborted
	default:
		return false, nil
	}
}

func createEmpty(dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	return f.Close()
}

func copyMetadata(srcInfo os.FileInfo, dst string) error {
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to copy permissions: %w", err)
	}

	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return fmt.Errorf("failed to copy timestamps: %w", err)
	}

	return nil
}

func removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Could not remove partial destination %s: %v", path, err)
	}
}
