package ops

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cpbar/internal/speed"
)

func testCopyOptions() CopyOptions {
	return CopyOptions{
		BufferSize:        64 * 1024,
		BlockSize:         128 * 1024,
		ParallelThreshold: 1 << 30,
		Model:             speed.NewModel(nil),
	}
}

func TestCopySingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	want := []byte("hello there")
	if err := os.WriteFile(src, want, 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	if err := Copy(context.Background(), []string{src}, dst, testCopyOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("destination missing: %v", err)
	}

	if !bytes.Equal(got, want) {
		t.Errorf("destination differs from source")
	}
}

func TestCopyMultipleSourcesCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	dest := filepath.Join(dir, "out")

	writeFile(t, a, 10)
	writeFile(t, b, 20)

	if err := Copy(context.Background(), []string{a, b}, dest, testCopyOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"a.txt", "b.txt"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("expected %s inside the created destination: %v", name, err)
		}
	}
}

func TestCopyMultipleSourcesToFileFails(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	dest := filepath.Join(dir, "occupied")

	writeFile(t, a, 1)
	writeFile(t, b, 1)
	writeFile(t, dest, 1)

	if err := Copy(context.Background(), []string{a, b}, dest, testCopyOptions()); err == nil {
		t.Fatal("expected an error copying multiple sources onto a file")
	}
}

func TestCopyRecursivePreservesStructure(t *testing.T) {
	dir := t.TempDir()
	tree := filepath.Join(dir, "tree")
	dest := filepath.Join(dir, "out")

	writeFile(t, filepath.Join(tree, "a.txt"), 10)
	writeFile(t, filepath.Join(tree, "sub", "b.txt"), 20)

	opts := testCopyOptions()
	opts.Recursive = true

	if err := Copy(context.Background(), []string{tree}, dest, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, rel := range []string{
		filepath.Join("tree", "a.txt"),
		filepath.Join("tree", "sub", "b.txt"),
	} {
		if _, err := os.Stat(filepath.Join(dest, rel)); err != nil {
			t.Errorf("expected %s below the destination: %v", rel, err)
		}
	}
}

func TestCopyDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	writeFile(t, src, 100)

	opts := testCopyOptions()
	opts.DryRun = true

	if err := Copy(context.Background(), []string{src}, dst, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Errorf("dry run created the destination: %v", err)
	}
}

func TestCopyNothingToDo(t *testing.T) {
	dir := t.TempDir()

	err := Copy(context.Background(), []string{filepath.Join(dir, "missing.txt")}, filepath.Join(dir, "out"), testCopyOptions())
	if !errors.Is(err, ErrNothingToDo) {
		t.Fatalf("expected ErrNothingToDo, got %v", err)
	}

	if err := Copy(context.Background(), nil, filepath.Join(dir, "out"), testCopyOptions()); !errors.Is(err, ErrNothingToDo) {
		t.Fatalf("expected ErrNothingToDo for empty sources, got %v", err)
	}
}
