package ops

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "a.txt"), 100)
	writeFile(t, filepath.Join(dir, "b.txt"), 200)

	files := CollectFiles([]string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
	}, false)

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	if got := totalSize(files); got != 300 {
		t.Errorf("expected total size 300, got %d", got)
	}
}

func TestCollectFilesRecursive(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "tree", "a.txt"), 10)
	writeFile(t, filepath.Join(dir, "tree", "sub", "b.txt"), 20)
	writeFile(t, filepath.Join(dir, "tree", "sub", "deep", "c.txt"), 30)

	files := CollectFiles([]string{filepath.Join(dir, "tree")}, true)

	if len(files) != 3 {
		t.Fatalf("expected 3 files from the walk, got %d", len(files))
	}

	if got := totalSize(files); got != 60 {
		t.Errorf("expected total size 60, got %d", got)
	}
}

func TestCollectFilesNonRecursiveDirectoryDropped(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "tree", "a.txt"), 10)
	writeFile(t, filepath.Join(dir, "plain.txt"), 5)

	files := CollectFiles([]string{
		filepath.Join(dir, "tree"),
		filepath.Join(dir, "plain.txt"),
	}, false)

	if len(files) != 1 {
		t.Fatalf("expected only the plain file, got %d entries", len(files))
	}

	if filepath.Base(files[0].Path) != "plain.txt" {
		t.Errorf("unexpected entry %q", files[0].Path)
	}
}

func TestCollectFilesMissingPathDropped(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "real.txt"), 1)

	files := CollectFiles([]string{
		filepath.Join(dir, "ghost.txt"),
		filepath.Join(dir, "real.txt"),
	}, false)

	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/a/b", "/a/b/c", true},
		{"/a/b", "/a/b", true},
		{"/a/b", "/a/bc", false},
		{"/a/b", "/a", false},
		{"/a/b", "/x/y", false},
	}

	for _, tt := range tests {
		if got := isWithin(tt.dir, tt.path); got != tt.want {
			t.Errorf("isWithin(%q, %q): expected %v, got %v", tt.dir, tt.path, tt.want, got)
		}
	}
}

func TestIsSystemDirectory(t *testing.T) {
	if !isSystemDirectory("/usr/local/share") {
		t.Error("expected /usr/local/share to be recognized as a system path")
	}

	if !isSystemDirectory("/etc") {
		t.Error("expected /etc to be recognized as a system path")
	}

	if isSystemDirectory(t.TempDir()) {
		t.Error("expected a temp directory to not be a system path")
	}
}
